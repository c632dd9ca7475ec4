// Package mailer delivers verification emails.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

var verificationTemplate = template.Must(template.New("verify").Parse(
	`<p>Hello,</p><p>Your confirmation code is <strong>{{.Code}}</strong>.</p>` +
		`<p>Open <a href="{{.Link}}">{{.Link}}</a> to confirm your account.</p>`))

type sendEmailRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

type contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Brevo sends transactional mail through the Brevo HTTP API. Calls go through
// a circuit breaker so a failing provider does not stall sign-ups.
type Brevo struct {
	apiKey     string
	fromEmail  string
	fromName   string
	verifyBase string
	endpoint   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type BrevoConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// VerifyBaseURL is prefixed to the code in the confirmation link.
	VerifyBaseURL string
	Endpoint      string
}

func NewBrevo(cfg BrevoConfig) (*Brevo, error) {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		return nil, errors.New("brevo api key and sender email are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultBrevoURL
	}

	settings := gobreaker.Settings{
		Name:        "brevo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Brevo{
		apiKey:     cfg.APIKey,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		verifyBase: strings.TrimRight(cfg.VerifyBaseURL, "/"),
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}, nil
}

func (b *Brevo) SendVerificationCode(ctx context.Context, email string, code string) error {
	var html bytes.Buffer
	err := verificationTemplate.Execute(&html, map[string]string{
		"Code": code,
		"Link": b.verifyBase + "/" + code,
	})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	return b.send(ctx, email, "Confirm your account", html.String())
}

func (b *Brevo) send(ctx context.Context, to string, subject string, html string) error {
	body, err := json.Marshal(sendEmailRequest{
		Sender:      contact{Email: b.fromEmail, Name: b.fromName},
		To:          []contact{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	_, err = b.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("api-key", b.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("brevo request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return nil, fmt.Errorf("brevo api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		}
		return nil, nil
	})
	return err
}

// LogMailer writes verification codes to the structured log. It stands in for
// a provider in local setups.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(_ context.Context, email string, code string) error {
	slog.Info("verification code issued", "email", email, "code", code)
	return nil
}
