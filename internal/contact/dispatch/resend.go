package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"folio/internal/contact/models"
	dErrors "folio/pkg/domain-errors"

	"github.com/resend/resend-go/v2"
)

const DefaultTimeout = 10 * time.Second

// ResendSender sends through the Resend HTTP API. Every call is bounded by
// the configured timeout; hitting it is reported as CodeTimeout.
type ResendSender struct {
	client  *resend.Client
	timeout time.Duration
}

type ResendOption func(*resendConfig)

type resendConfig struct {
	timeout    time.Duration
	baseURL    string
	httpClient *http.Client
}

func WithTimeout(d time.Duration) ResendOption {
	return func(c *resendConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseURL points the client at another API host, e.g. a local stub.
func WithBaseURL(raw string) ResendOption {
	return func(c *resendConfig) {
		c.baseURL = raw
	}
}

func WithHTTPClient(client *http.Client) ResendOption {
	return func(c *resendConfig) {
		c.httpClient = client
	}
}

func NewResendSender(apiKey string, opts ...ResendOption) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend: api key is required")
	}
	cfg := &resendConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	client := resend.NewCustomClient(httpClient, apiKey)
	if cfg.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("resend: parse base URL: %w", err)
		}
		client.BaseURL = base
	}

	return &ResendSender{client: client, timeout: cfg.timeout}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg *models.Message) (*models.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "email provider timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDispatchFailed, "email provider rejected the message")
	}
	if resp == nil {
		return &models.Receipt{}, nil
	}
	return &models.Receipt{ID: resp.Id}, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
