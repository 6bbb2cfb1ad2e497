package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/service"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// incomingView — входящий запрос контакта в JSON-ответах.
type incomingView struct {
	RequesterID string `json:"requester_id"`
	Score       int32  `json:"score"`
	Approved    string `json:"approved"`
}

// outgoingView — исходящий запрос контакта в JSON-ответах.
type outgoingView struct {
	TargetUserID string `json:"target_user_id"`
	Score        int32  `json:"score"`
	Approved     string `json:"approved"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// userView — полная проекция учётной записи (без хэша пароля).
type userView struct {
	ID                    string            `json:"id"`
	Username              string            `json:"username"`
	Email                 string            `json:"email"`
	PhoneNumber           string            `json:"phone_number"`
	Gender                string            `json:"gender"`
	IsVerified            bool              `json:"is_verified"`
	IsOnline              bool              `json:"is_online"`
	Answers               map[string]string `json:"answers"`
	CompatibilityRequests []incomingView    `json:"compatibility_requests"`
	SentRequests          []outgoingView    `json:"sent_requests"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

func incomingViews(reqs []models.CompatibilityRequest) []incomingView {
	out := make([]incomingView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, incomingView{
			RequesterID: r.RequesterID,
			Score:       r.Score,
			Approved:    string(r.Approved),
		})
	}
	return out
}

func outgoingViews(reqs []models.SentRequest) []outgoingView {
	out := make([]outgoingView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, outgoingView{
			TargetUserID: r.TargetUserID,
			Score:        r.Score,
			Approved:     string(r.Approved),
			PhoneNumber:  r.PhoneNumber,
		})
	}
	return out
}

func userFromModel(u *models.User) userView {
	return userView{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		PhoneNumber:           u.PhoneNumber,
		Gender:                string(u.Gender),
		IsVerified:            u.IsVerified,
		IsOnline:              u.IsOnline,
		Answers:               u.Answers,
		CompatibilityRequests: incomingViews(u.CompatibilityRequests),
		SentRequests:          outgoingViews(u.SentRequests),
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}
