package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"folio/internal/contact/models"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	POSTRaw(path, body string, headers map[string]string) error
	GetLastResponseStatus() int
	SentMessages() []*models.Message
	SetProviderFailing(failing bool)
	AdvanceClock(d time.Duration)
}

const contactPath = "/api/contact"

// RegisterSteps registers contact form step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &contactSteps{tc: tc}

	ctx.Step(`^client "([^"]*)" submits name "([^"]*)" email "([^"]*)" message "([^"]*)"$`, steps.submit)
	ctx.Step(`^client "([^"]*)" submits name "([^"]*)" email "([^"]*)" message "([^"]*)" in language "([^"]*)"$`, steps.submitInLanguage)
	ctx.Step(`^client "([^"]*)" submits a body of (\d+) bytes$`, steps.submitOversized)
	ctx.Step(`^client "([^"]*)" submits the raw body '([^']*)'$`, steps.submitRaw)
	ctx.Step(`^client "([^"]*)" has submitted (\d+) valid messages$`, steps.hasSubmittedN)
	ctx.Step(`^the rate limit window has elapsed$`, steps.windowElapsed)
	ctx.Step(`^the email provider is failing$`, steps.providerFailing)

	ctx.Step(`^(\d+) emails? should have been dispatched$`, steps.dispatchedCount)
	ctx.Step(`^no email should have been dispatched$`, func(context.Context) error { return steps.dispatchedCount(context.Background(), 0) })
	ctx.Step(`^the last email should have reply-to "([^"]*)"$`, steps.lastReplyTo)
	ctx.Step(`^the last email subject should contain "([^"]*)"$`, steps.lastSubjectContains)
	ctx.Step(`^the last email body should contain "([^"]*)"$`, steps.lastBodyContains)
	ctx.Step(`^the last email body should not contain "([^"]*)"$`, steps.lastBodyNotContains)
}

type contactSteps struct {
	tc TestContext
}

func headersFor(clientIP, lang string) map[string]string {
	h := map[string]string{"X-Forwarded-For": clientIP}
	if lang != "" {
		h["Accept-Language"] = lang
	}
	return h
}

func (s *contactSteps) submit(ctx context.Context, clientIP, name, email, message string) error {
	return s.submitInLanguage(ctx, clientIP, name, email, message, "")
}

func (s *contactSteps) submitInLanguage(_ context.Context, clientIP, name, email, message, lang string) error {
	body := models.Submission{Name: name, Email: email, Message: message}
	return s.tc.POSTWithHeaders(contactPath, body, headersFor(clientIP, lang))
}

func (s *contactSteps) submitOversized(_ context.Context, clientIP string, size int) error {
	prefix := `{"name":"Ana","email":"ana@example.com","message":"`
	suffix := `"}`
	filler := max(size-len(prefix)-len(suffix), 0)
	body := prefix + strings.Repeat("a", filler) + suffix
	return s.tc.POSTRaw(contactPath, body, headersFor(clientIP, ""))
}

func (s *contactSteps) submitRaw(_ context.Context, clientIP, body string) error {
	return s.tc.POSTRaw(contactPath, body, headersFor(clientIP, ""))
}

func (s *contactSteps) hasSubmittedN(ctx context.Context, clientIP string, n int) error {
	for i := range n {
		if err := s.submit(ctx, clientIP, "Ana", "ana@example.com", fmt.Sprintf("Hello %d", i+1)); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status != 200 {
			return fmt.Errorf("submission %d: expected status 200, got %d", i+1, status)
		}
	}
	return nil
}

func (s *contactSteps) windowElapsed(context.Context) error {
	s.tc.AdvanceClock(time.Hour + time.Second)
	return nil
}

func (s *contactSteps) providerFailing(context.Context) error {
	s.tc.SetProviderFailing(true)
	return nil
}

func (s *contactSteps) dispatchedCount(_ context.Context, n int) error {
	if got := len(s.tc.SentMessages()); got != n {
		return fmt.Errorf("expected %d dispatched emails, got %d", n, got)
	}
	return nil
}

func (s *contactSteps) last() (*models.Message, error) {
	sent := s.tc.SentMessages()
	if len(sent) == 0 {
		return nil, fmt.Errorf("no email was dispatched")
	}
	return sent[len(sent)-1], nil
}

func (s *contactSteps) lastReplyTo(_ context.Context, want string) error {
	msg, err := s.last()
	if err != nil {
		return err
	}
	if msg.ReplyTo != want {
		return fmt.Errorf("expected reply-to %q, got %q", want, msg.ReplyTo)
	}
	return nil
}

func (s *contactSteps) lastSubjectContains(_ context.Context, want string) error {
	msg, err := s.last()
	if err != nil {
		return err
	}
	if !strings.Contains(msg.Subject, want) {
		return fmt.Errorf("expected subject %q to contain %q", msg.Subject, want)
	}
	return nil
}

func (s *contactSteps) lastBodyContains(_ context.Context, want string) error {
	msg, err := s.last()
	if err != nil {
		return err
	}
	if !strings.Contains(msg.HTML, want) {
		return fmt.Errorf("expected email body to contain %q", want)
	}
	return nil
}

func (s *contactSteps) lastBodyNotContains(_ context.Context, unwanted string) error {
	msg, err := s.last()
	if err != nil {
		return err
	}
	if strings.Contains(msg.HTML, unwanted) {
		return fmt.Errorf("expected email body not to contain %q", unwanted)
	}
	return nil
}
