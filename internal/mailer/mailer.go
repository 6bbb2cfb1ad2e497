// mailer отправляет письма с кодами подтверждения через Mailtrap API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pribylovaa/campus-match/internal/config"
)

// Mailer — контракт доставки одноразовых кодов.
type Mailer interface {
	// SendOTP отправляет код подтверждения на адрес.
	SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error
}

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailRequest struct {
	From     recipient   `json:"from"`
	To       []recipient `json:"to"`
	Subject  string      `json:"subject"`
	Text     string      `json:"text"`
	Category string      `json:"category,omitempty"`
}

type mailtrap struct {
	cfg    config.MailConfig
	client *http.Client
}

// NewMailtrap создаёт отправителя поверх HTTP API Mailtrap.
func NewMailtrap(cfg config.MailConfig) (Mailer, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("mailer: empty api_url")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailer: empty api_key")
	}

	return &mailtrap{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (m *mailtrap) SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	const op = "mailer/SendOTP"

	payload := emailRequest{
		From:    recipient{Email: m.cfg.FromEmail, Name: m.cfg.FromName},
		To:      []recipient{{Email: toEmail}},
		Subject: "Your verification code",
		Text: fmt.Sprintf(
			"Your verification code is %s. It expires in %d minutes. "+
				"If you didn't request this code, ignore this email.",
			code, int(ttl.Minutes()),
		),
		Category: "email-verification",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: mailtrap status %d", op, resp.StatusCode)
	}

	return nil
}
