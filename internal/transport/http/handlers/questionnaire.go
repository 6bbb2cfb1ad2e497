package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/campus-match/internal/errors"
	"github.com/pribylovaa/campus-match/internal/service"
	"github.com/pribylovaa/campus-match/internal/transport/http/middleware"
)

type questionView struct {
	ID      string   `json:"id"`
	Index   int32    `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type questionsResponse struct {
	Questions []questionView `json:"questions"`
}

// Questions отдаёт список вопросов анкеты.
func (h *Handlers) Questions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.Service.Questions(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := questionsResponse{Questions: make([]questionView, 0, len(qs))}
	for _, q := range qs {
		out.Questions = append(out.Questions, questionView{
			ID:      q.ID,
			Index:   q.Index,
			Text:    q.Text,
			Options: q.Options,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

type submitAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// SubmitAnswers принимает ответы на тест (однократно, полным набором).
func (h *Handlers) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var in submitAnswersRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	userID := middleware.UserIDFrom(r.Context())

	if err := h.Service.SubmitAnswers(r.Context(), userID, in.Answers); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "answers submitted"})
}
