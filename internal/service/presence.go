package service

import (
	"context"
	"fmt"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/pkg/log"
)

// OnlineUsers возвращает витрину пользователей онлайн, включая самого
// вызывающего: из его записи клиент читает собственные входящие заявки.
func (s *Service) OnlineUsers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	const op = "service/presence/OnlineUsers"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	users, err := s.storage.OnlineUsers(ctx)
	if err != nil {
		log.From(ctx).Error("storage error on OnlineUsers", "op", op, "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	return summaries, nil
}
