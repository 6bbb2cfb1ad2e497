package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/campus-match/internal/errors"
	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/service"
)

type checkUserRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type checkUserResponse struct {
	Available bool `json:"available"`
}

// CheckUser проверяет занятость e-mail и телефона перед отправкой OTP.
func (h *Handlers) CheckUser(w http.ResponseWriter, r *http.Request) {
	var in checkUserRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.Service.CheckAvailability(r.Context(), service.CheckAvailabilityInput{
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkUserResponse{Available: true})
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SendOTP отправляет одноразовый код на студенческую почту.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var in sendOTPRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.Service.SendEmailOTP(r.Context(), in.Email); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "otp sent"})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyOTPResponse struct {
	Verified bool `json:"verified"`
}

// VerifyOTP сверяет одноразовый код.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in verifyOTPRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.Service.VerifyEmailOTP(r.Context(), in.Email, in.Code); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyOTPResponse{Verified: true})
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
	Password    string `json:"password"`
}

// Register создаёт учётную запись после подтверждения почты.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), service.RegisterInput{
		Username:    in.Username,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Gender:      models.Gender(in.Gender),
		Password:    in.Password,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userFromModel(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userView  `json:"user"`
}

// Login выполняет вход и выпускает access-токен.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	res, err := h.Service.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        userFromModel(res.User),
	})
}
