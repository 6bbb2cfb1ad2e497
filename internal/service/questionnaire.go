package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/pkg/log"
	"github.com/pribylovaa/campus-match/internal/storage"
)

// Questions возвращает статичный список вопросов анкеты.
func (s *Service) Questions(ctx context.Context) ([]models.Question, error) {
	const op = "service/questionnaire/Questions"

	qs, err := s.storage.Questions(ctx)
	if err != nil {
		log.From(ctx).Error("storage error on Questions", "op", op, "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return qs, nil
}

// SubmitAnswers принимает ответы на тест. Ответы принимаются ровно один
// раз и только полным набором: ключи "0".."9" (по числу вопросов),
// значения — одна заглавная буква.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — не все вопросы отвечены, лишние/битые ключи
//     или значения;
//   - ErrNotAuthenticated — учётная запись вызывающего не найдена;
//   - ErrTestAlreadyTaken — тест уже сдан; сохранённые ответы не меняются;
//   - ErrInternal — ошибки стораджа.
func (s *Service) SubmitAnswers(ctx context.Context, userID string, answers map[string]string) error {
	const op = "service/questionnaire/SubmitAnswers"

	lg := log.From(ctx).With("op", op, "user_id", userID)

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if len(answers) != s.cfg.Limits.QuestionCount {
		lg.Warn("invalid argument: wrong answer count", "count", len(answers))
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	for key, val := range answers {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= s.cfg.Limits.QuestionCount || key != strconv.Itoa(idx) {
			lg.Warn("invalid argument: bad answer key", "key", key)
			return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		if len(val) != 1 || val[0] < 'A' || val[0] > 'Z' {
			lg.Warn("invalid argument: bad answer value", "key", key)
			return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
		}

		lg.Error("storage error on UserByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if user.HasTakenTest() {
		lg.Warn("test already taken")
		return fmt.Errorf("%s: %w", op, ErrTestAlreadyTaken)
	}

	user.Answers = answers
	if err := s.storage.SaveUser(ctx, user); err != nil {
		lg.Error("storage error on SaveUser", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("answers_submitted")

	return nil
}
