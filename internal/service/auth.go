package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/pkg/log"
	"github.com/pribylovaa/campus-match/internal/pkg/redact"
	"github.com/pribylovaa/campus-match/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// phoneRe — десятизначный номер без кода страны.
var phoneRe = regexp.MustCompile(`^\d{10}$`)

// CheckAvailabilityInput — проверка занятости e-mail/телефона перед
// началом верификации.
type CheckAvailabilityInput struct {
	Email       string
	PhoneNumber string
}

// RegisterInput — финальная регистрация после подтверждения почты.
type RegisterInput struct {
	Username    string
	Email       string
	PhoneNumber string
	Gender      models.Gender
	Password    string
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

// CheckAvailability проверяет, что e-mail и телефон ещё не заняты.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — битый e-mail (вне студенческого домена) или телефон;
//   - ErrEmailTaken / ErrPhoneTaken — значение уже зарегистрировано;
//   - ErrInternal — ошибки стораджа.
func (s *Service) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) error {
	const op = "service/auth/CheckAvailability"

	lg := log.From(ctx).With("op", op, "email", redact.Email(in.Email))

	email, err := s.normalizeEmail(in.Email)
	if err != nil {
		lg.Warn("invalid email")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	phone := strings.TrimSpace(in.PhoneNumber)
	if !phoneRe.MatchString(phone) {
		lg.Warn("invalid phone", "phone", redact.Phone(phone))
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if _, err := s.storage.UserByEmail(ctx, email); err == nil {
		return fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on UserByEmail", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if _, err := s.storage.UserByPhone(ctx, phone); err == nil {
		return fmt.Errorf("%s: %w", op, ErrPhoneTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on UserByPhone", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// RegisterUser создаёт учётную запись. Вызывается после успешного
// VerifyEmailOTP, поэтому запись сразу помечается is_verified=true.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой username, битый e-mail/телефон/пол,
//     пустой пароль;
//   - ErrEmailTaken / ErrPhoneTaken / ErrAlreadyExists — конфликт
//     уникальности (включая гонку на вставке);
//   - ErrInternal — прочие ошибки.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service/auth/RegisterUser"

	lg := log.From(ctx).With("op", op, "email", redact.Email(in.Email))

	username := strings.TrimSpace(in.Username)
	if username == "" {
		lg.Warn("invalid argument: empty username")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	email, err := s.normalizeEmail(in.Email)
	if err != nil {
		lg.Warn("invalid email")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	phone := strings.TrimSpace(in.PhoneNumber)
	if !phoneRe.MatchString(phone) {
		lg.Warn("invalid phone", "phone", redact.Phone(phone))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if !in.Gender.Valid() {
		lg.Warn("invalid gender", "gender", string(in.Gender))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Password == "" {
		lg.Warn("invalid argument: empty password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	// Предварительная проверка занятости: даёт точную причину отказа.
	// Гонку на вставке всё равно ловит уникальный индекс.
	if _, err := s.storage.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on UserByEmail", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if _, err := s.storage.UserByPhone(ctx, phone); err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrPhoneTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on UserByPhone", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("bcrypt failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  phone,
		Gender:       in.Gender,
		IsVerified:   true,
		Answers:      map[string]string{},
	}

	created, err := s.storage.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}

		lg.Error("storage error on CreateUser", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user_registered", "user_id", created.ID)

	return created, nil
}

// LoginUser выполняет вход по email+пароль, помечает пользователя
// онлайн и выпускает access-токен.
//
// Флаг is_online никогда не сбрасывается сервисом — семантика выхода
// из системы в обозримой версии не определена.
//
// Поведение/ошибки:
//   - ErrInvalidCredentials — неизвестный e-mail или неверный пароль;
//   - ErrInternal — ошибки стораджа/подписи токена.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "service/auth/LoginUser"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := s.normalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("storage error on UserByEmail", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	now := time.Now().UTC()

	token, err := s.generateAccessToken(user.ID, user.Email, now)
	if err != nil {
		lg.Error("access token sign failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !user.IsOnline {
		user.IsOnline = true
		if err := s.storage.SaveUser(ctx, user); err != nil {
			lg.Error("storage error on SaveUser", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("user_logged_in", "user_id", user.ID)

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.cfg.Auth.AccessTokenTTL),
		User:        user,
	}, nil
}

// normalizeEmail проверяет студенческую почту: только адреса вида
// <цифры>@<домен института>.
func (s *Service) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidArgument
	}

	suffix := "@" + s.cfg.Auth.EmailDomain
	local, ok := strings.CutSuffix(email, suffix)
	if !ok || local == "" {
		return "", ErrInvalidArgument
	}

	for _, r := range local {
		if r < '0' || r > '9' {
			return "", ErrInvalidArgument
		}
	}

	return email, nil
}
