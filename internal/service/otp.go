package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"github.com/pribylovaa/campus-match/internal/pkg/log"
	"github.com/pribylovaa/campus-match/internal/pkg/redact"
)

// SendEmailOTP генерирует одноразовый код, кладёт его в кэш с TTL и
// отправляет письмом. Повторный вызов затирает предыдущий код.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — адрес вне студенческого домена;
//   - ErrInternal — ошибки кэша или доставки письма.
func (s *Service) SendEmailOTP(ctx context.Context, email string) error {
	const op = "service/otp/SendEmailOTP"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := s.normalizeEmail(email)
	if err != nil {
		lg.Warn("invalid email")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	code, err := generateCode(s.cfg.OTP.CodeLength)
	if err != nil {
		lg.Error("code generation failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	// Сначала кэш, затем письмо: код без письма бесполезен, но
	// письмо с кодом, которого нет в кэше, хуже.
	if err := s.otp.Set(ctx, normEmail, code, s.cfg.OTP.TTL); err != nil {
		lg.Error("otp cache set failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.mail.SendOTP(ctx, normEmail, code, s.cfg.OTP.TTL); err != nil {
		lg.Error("otp mail failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("otp_sent")

	return nil
}

// VerifyEmailOTP сверяет код и удаляет его из кэша при успехе.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — битый адрес или пустой код;
//   - ErrOTPNotFound — код не запрашивался или истёк по TTL;
//   - ErrOTPMismatch — код не совпал (остаётся в кэше до истечения);
//   - ErrInternal — ошибки кэша.
func (s *Service) VerifyEmailOTP(ctx context.Context, email, code string) error {
	const op = "service/otp/VerifyEmailOTP"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := s.normalizeEmail(email)
	if err != nil {
		lg.Warn("invalid email")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	stored, found, err := s.otp.Get(ctx, normEmail)
	if err != nil {
		lg.Error("otp cache get failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !found {
		lg.Warn("otp not found or expired")
		return fmt.Errorf("%s: %w", op, ErrOTPNotFound)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		lg.Warn("otp mismatch")
		return fmt.Errorf("%s: %w", op, ErrOTPMismatch)
	}

	if err := s.otp.Del(ctx, normEmail); err != nil {
		lg.Error("otp cache del failed", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("otp_verified")

	return nil
}

// generateCode возвращает криптографически случайный код из n цифр.
func generateCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)

	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
