package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/campus-match/internal/errors"
	"github.com/pribylovaa/campus-match/internal/service"
	"github.com/pribylovaa/campus-match/internal/transport/http/middleware"
)

type compatibilityRequest struct {
	TargetUserID string `json:"target_user_id"`
}

type compatibilityResponse struct {
	TargetUserID string `json:"target_user_id"`
	Score        int32  `json:"score"`
}

// Compatibility считает балл совместимости вызывающего с другим
// пользователем.
func (h *Handlers) Compatibility(w http.ResponseWriter, r *http.Request) {
	var in compatibilityRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	res, err := h.Service.CompatibilityScore(r.Context(), middleware.UserIDFrom(r.Context()), in.TargetUserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, compatibilityResponse{
		TargetUserID: res.TargetUserID,
		Score:        res.Score,
	})
}

type createRequestRequest struct {
	TargetUserID string `json:"target_user_id"`
	Score        int32  `json:"score"`
}

// CreateRequest отправляет запрос контакта.
func (h *Handlers) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in createRequestRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.Service.CreateRequest(r.Context(), middleware.UserIDFrom(r.Context()), service.CreateRequestInput{
		TargetUserID: in.TargetUserID,
		Score:        in.Score,
	}); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "request sent"})
}

type approveRequest struct {
	RequesterID string `json:"requester_id"`
	Approved    bool   `json:"approved"`
}

type approveResponse struct {
	RequesterID string `json:"requester_id"`
	Approved    string `json:"approved"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Approve одобряет или отклоняет входящий запрос контакта.
// При одобрении в ответе раскрывается номер телефона решающего.
func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	var in approveRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	res, err := h.Service.ResolveRequest(r.Context(), middleware.UserIDFrom(r.Context()), service.ResolveRequestInput{
		RequesterID: in.RequesterID,
		Approve:     in.Approved,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, approveResponse{
		RequesterID: res.RequesterID,
		Approved:    string(res.Approved),
		PhoneNumber: res.PhoneNumber,
	})
}
