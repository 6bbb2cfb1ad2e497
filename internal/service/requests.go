package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/pkg/log"
	"github.com/pribylovaa/campus-match/internal/storage"
)

// CreateRequestInput — входные данные отправки заявки на совместимость.
type CreateRequestInput struct {
	TargetUserID string
	Score        int32
}

// ResolveRequestInput — входные данные решения по входящей заявке.
type ResolveRequestInput struct {
	RequesterID string
	Approve     bool
}

// ResolveResult — результат решения по заявке. PhoneNumber заполнен
// только при одобрении.
type ResolveResult struct {
	RequesterID string
	Approved    models.Approval
	PhoneNumber string
}

// CreateRequest отправляет заявку на совместимость другому пользователю.
//
// Проверки выполняются строго по порядку, первый же провал завершает
// операцию:
//  1. целевой пользователь существует — иначе ErrNotFound;
//  2. пол противоположный — иначе ErrSameGender;
//  3. счёт не ниже порога (порог включительно) — иначе ErrScoreTooLow;
//  4. заявка этому пользователю ещё не отправлялась — иначе ErrDuplicateSent;
//  5. у получателя нет нерешённой заявки от отправителя — иначе
//     ErrDuplicatePending.
//
// Заявка записывается в оба документа: входящая — получателю, исходящая —
// отправителю. Сначала сохраняется документ получателя: если упадёт вторая
// запись, у получателя останется требующая решения заявка, а не «висящая»
// исходящая без пары.
func (s *Service) CreateRequest(ctx context.Context, userID string, input CreateRequestInput) error {
	const op = "service/requests/CreateRequest"

	lg := log.From(ctx).With("op", op, "user_id", userID, "target_id", input.TargetUserID)

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if input.TargetUserID == "" || input.TargetUserID == userID {
		lg.Warn("invalid argument: bad target id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if input.Score < 0 || input.Score > 100 {
		lg.Warn("invalid argument: score out of range", "score", input.Score)
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
		}

		lg.Error("storage error on UserByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	target, err := s.storage.UserByID(ctx, input.TargetUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("target not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByID (target)", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !compatible(user, target) {
		lg.Warn("same gender")
		return fmt.Errorf("%s: %w", op, ErrSameGender)
	}

	if input.Score < s.cfg.Limits.ScoreThreshold {
		lg.Warn("score below threshold", "score", input.Score, "threshold", s.cfg.Limits.ScoreThreshold)
		return fmt.Errorf("%s: %w", op, ErrScoreTooLow)
	}

	if user.OutgoingIndex(target.ID) >= 0 {
		lg.Warn("duplicate sent request")
		return fmt.Errorf("%s: %w", op, ErrDuplicateSent)
	}

	if idx := target.IncomingIndex(user.ID); idx >= 0 && target.CompatibilityRequests[idx].Approved == models.ApprovalPending {
		lg.Warn("request already pending")
		return fmt.Errorf("%s: %w", op, ErrDuplicatePending)
	}

	target.CompatibilityRequests = append(target.CompatibilityRequests, models.CompatibilityRequest{
		RequesterID: user.ID,
		Score:       input.Score,
		Approved:    models.ApprovalPending,
	})

	user.SentRequests = append(user.SentRequests, models.SentRequest{
		TargetUserID: target.ID,
		Score:        input.Score,
		Approved:     models.ApprovalPending,
	})

	if err := s.storage.SaveUser(ctx, target); err != nil {
		lg.Error("storage error on SaveUser (target)", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		lg.Error("storage error on SaveUser (requester)", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("request_created", "score", input.Score)

	return nil
}

// ResolveRequest одобряет или отклоняет входящую заявку.
//
// Входящая заявка удаляется из документа решающего в любом случае.
// У отправителя заявка остаётся в истории с итоговым статусом; при
// одобрении туда же записывается номер телефона решающего. Обновление
// документа отправителя выполняется по принципу best-effort: его сбой
// логируется, но не откатывает уже принятое решение.
//
// Поведение/ошибки:
//   - ErrNotFound — входящей заявки от указанного пользователя нет;
//   - ErrNotAuthenticated — учётная запись вызывающего не найдена;
//   - ErrInternal — ошибки стораджа.
func (s *Service) ResolveRequest(ctx context.Context, userID string, input ResolveRequestInput) (*ResolveResult, error) {
	const op = "service/requests/ResolveRequest"

	lg := log.From(ctx).With("op", op, "user_id", userID, "requester_id", input.RequesterID)

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if input.RequesterID == "" || input.RequesterID == userID {
		lg.Warn("invalid argument: bad requester id")
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

	idx := user.IncomingIndex(input.RequesterID)
	if idx < 0 {
		lg.Warn("incoming request not found")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	user.CompatibilityRequests = append(
		user.CompatibilityRequests[:idx],
		user.CompatibilityRequests[idx+1:]...,
	)

	verdict := models.ApprovalFromBool(input.Approve)

	if err := s.storage.SaveUser(ctx, user); err != nil {
		lg.Error("storage error on SaveUser (approver)", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.updateRequesterHistory(ctx, input.RequesterID, user, verdict)

	result := &ResolveResult{
		RequesterID: input.RequesterID,
		Approved:    verdict,
	}
	if input.Approve {
		result.PhoneNumber = user.PhoneNumber
	}

	lg.Info("request_resolved", "approved", input.Approve)

	return result, nil
}

// updateRequesterHistory проставляет итоговый статус в исходящей заявке
// отправителя. Best-effort: сбои здесь не влияют на результат решения.
func (s *Service) updateRequesterHistory(ctx context.Context, requesterID string, approver *models.User, verdict models.Approval) {
	const op = "service/requests/updateRequesterHistory"

	lg := log.From(ctx).With("op", op, "requester_id", requesterID)

	requester, err := s.storage.UserByID(ctx, requesterID)
	if err != nil {
		lg.Error("storage error on UserByID (requester)", "err", err)
		return
	}

	idx := requester.OutgoingIndex(approver.ID)
	if idx < 0 {
		lg.Warn("outgoing request missing on requester side")
		return
	}

	requester.SentRequests[idx].Approved = verdict
	if verdict == models.ApprovalApproved {
		requester.SentRequests[idx].PhoneNumber = approver.PhoneNumber
	}

	if err := s.storage.SaveUser(ctx, requester); err != nil {
		lg.Error("storage error on SaveUser (requester)", "err", err)
	}
}
