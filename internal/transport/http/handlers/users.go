package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/campus-match/internal/errors"
	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/transport/http/middleware"
)

type summaryView struct {
	ID                    string         `json:"id"`
	Username              string         `json:"username"`
	Gender                string         `json:"gender"`
	PhoneNumber           string         `json:"phone_number"`
	CompatibilityRequests []incomingView `json:"compatibility_requests"`
	SentRequests          []outgoingView `json:"sent_requests"`
}

type onlineUsersResponse struct {
	Users []summaryView `json:"users"`
}

// OnlineUsers отдаёт витрину пользователей онлайн, включая вызывающего.
func (h *Handlers) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.OnlineUsers(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := onlineUsersResponse{Users: make([]summaryView, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, summaryFromModel(u))
	}

	writeJSON(w, http.StatusOK, out)
}

func summaryFromModel(u models.UserSummary) summaryView {
	return summaryView{
		ID:                    u.ID,
		Username:              u.Username,
		Gender:                string(u.Gender),
		PhoneNumber:           u.PhoneNumber,
		CompatibilityRequests: incomingViews(u.CompatibilityRequests),
		SentRequests:          outgoingViews(u.SentRequests),
	}
}
