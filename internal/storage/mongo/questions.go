package mongo

import (
	"context"
	"fmt"

	"github.com/pribylovaa/campus-match/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type questionDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Index   int32              `bson:"index"`
	Text    string             `bson:"text"`
	Options []string           `bson:"options"`
}

// Questions возвращает вопросы анкеты, отсортированные по index.
func (m *Mongo) Questions(ctx context.Context) ([]models.Question, error) {
	const op = "storage/mongo/Questions"

	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	cur, err := m.questions.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []models.Question
	for cur.Next(ctx) {
		var doc questionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, models.Question{
			ID:      doc.ID.Hex(),
			Index:   doc.Index,
			Text:    doc.Text,
			Options: doc.Options,
		})
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

// ReplaceQuestions пересоздаёт список вопросов: очищает коллекцию и
// вставляет новый набор. Используется сидером.
func (m *Mongo) ReplaceQuestions(ctx context.Context, questions []models.Question) error {
	const op = "storage/mongo/ReplaceQuestions"

	if _, err := m.questions.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	if len(questions) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(questions))
	for _, q := range questions {
		docs = append(docs, questionDoc{
			Index:   q.Index,
			Text:    q.Text,
			Options: q.Options,
		})
	}

	if _, err := m.questions.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	return nil
}
