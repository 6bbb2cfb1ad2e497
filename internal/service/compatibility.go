package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/pkg/log"
	"github.com/pribylovaa/campus-match/internal/storage"
)

// Score считает процент совпадения двух наборов ответов: число вопросов,
// на которые оба ответили одинаково, делённое на общее число вопросов.
// Результат квантован с шагом 100/questionCount и симметричен относительно
// перестановки аргументов.
func Score(a, b map[string]string, questionCount int) int32 {
	if questionCount <= 0 {
		return 0
	}

	matches := 0
	for key, av := range a {
		if bv, ok := b[key]; ok && av == bv {
			matches++
		}
	}

	return int32(matches * 100 / questionCount)
}

// CompatibilityResult — результат расчёта совместимости.
type CompatibilityResult struct {
	TargetUserID string
	Score        int32
}

// CompatibilityScore считает совместимость вызывающего с другим пользователем.
//
// Поведение/ошибки:
//   - ErrNotAuthenticated — учётная запись вызывающего не найдена;
//   - ErrNotFound — целевой пользователь не существует;
//   - ErrSameGender — пол совпадает (в обе стороны одинаково);
//   - ErrTestIncomplete — одна из сторон не сдала тест;
//   - ErrInternal — ошибки стораджа.
func (s *Service) CompatibilityScore(ctx context.Context, userID, targetID string) (*CompatibilityResult, error) {
	const op = "service/compatibility/CompatibilityScore"

	lg := log.From(ctx).With("op", op, "user_id", userID, "target_id", targetID)

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if targetID == "" || targetID == userID {
		lg.Warn("invalid argument: bad target id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
		}

		lg.Error("storage error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	target, err := s.storage.UserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("target not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByID (target)", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if user.Gender == target.Gender {
		lg.Warn("same gender")
		return nil, fmt.Errorf("%s: %w", op, ErrSameGender)
	}

	if !user.HasTakenTest() || !target.HasTakenTest() {
		lg.Warn("test incomplete")
		return nil, fmt.Errorf("%s: %w", op, ErrTestIncomplete)
	}

	score := Score(user.Answers, target.Answers, s.cfg.Limits.QuestionCount)

	lg.Info("compatibility_scored", "score", score)

	return &CompatibilityResult{
		TargetUserID: target.ID,
		Score:        score,
	}, nil
}

// compatible — внутренняя проверка для повторного использования в requests.go.
func compatible(a, b *models.User) bool {
	return a.Gender != b.Gender
}
