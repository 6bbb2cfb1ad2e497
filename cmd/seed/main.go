// seed наполняет коллекцию вопросов анкеты совместимости.
// Запускается однократно при разворачивании окружения; повторный запуск
// полностью пересоздаёт список.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pribylovaa/campus-match/internal/config"
	"github.com/pribylovaa/campus-match/internal/models"
	cmmongo "github.com/pribylovaa/campus-match/internal/storage/mongo"
)

var questions = []models.Question{
	{Index: 0, Text: "Favorite season?", Options: []string{"A: Spring", "B: Summer", "C: Fall", "D: Winter"}},
	{Index: 1, Text: "Morning or night person?", Options: []string{"A: Morning", "B: Night"}},
	{Index: 2, Text: "Favorite color?", Options: []string{"A: Blue", "B: Red", "C: Green", "D: Yellow"}},
	{Index: 3, Text: "Preferred weekend activity?", Options: []string{"A: Movies", "B: Hiking", "C: Reading", "D: Gaming"}},
	{Index: 4, Text: "Favorite food?", Options: []string{"A: Pizza", "B: Sushi", "C: Burgers", "D: Pasta"}},
	{Index: 5, Text: "Ideal vacation?", Options: []string{"A: Beach", "B: Mountains", "C: City", "D: Countryside"}},
	{Index: 6, Text: "Music taste?", Options: []string{"A: Pop", "B: Rock", "C: Hip-Hop", "D: Classical"}},
	{Index: 7, Text: "Pet preference?", Options: []string{"A: Dog", "B: Cat", "C: Bird", "D: None"}},
	{Index: 8, Text: "Work style?", Options: []string{"A: Team", "B: Solo"}},
	{Index: 9, Text: "Coffee or tea?", Options: []string{"A: Coffee", "B: Tea"}},
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := cmmongo.New(ctx, cfg)
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.ReplaceQuestions(ctx, questions); err != nil {
		log.Error("seed_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("questions_seeded", slog.Int("count", len(questions)))
}
