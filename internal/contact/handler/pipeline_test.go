package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"folio/internal/contact/compose"
	"folio/internal/contact/dispatch/mocks"
	"folio/internal/contact/models"
	contactservice "folio/internal/contact/service"
	"folio/internal/i18n"
	rlservice "folio/internal/ratelimit/service"
	"folio/internal/ratelimit/store/window"
	"folio/pkg/platform/middleware/metadata"
)

// PipelineSuite runs the handler against the real limiter and contact
// service with only the email provider replaced.
type PipelineSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	sender *mocks.MockSender
	now    time.Time
	router http.Handler
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sender = mocks.NewMockSender(s.ctrl)
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	limiter, err := rlservice.New(window.NewInMemoryStore(),
		rlservice.WithLimit(3),
		rlservice.WithWindow(time.Hour),
		rlservice.WithLogger(logger),
		rlservice.WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)

	composer, err := compose.New("Portfolio <noreply@example.com>", []string{"owner@example.com"})
	s.Require().NoError(err)
	svc, err := contactservice.New(composer, s.sender, contactservice.WithLogger(logger))
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(metadata.NewMiddleware(nil).Handler)
	New(limiter, svc, i18n.MustLoad(), logger).Register(r)
	s.router = r
}

func (s *PipelineSuite) post(clientIP, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", clientIP)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

const anaBody = `{"name":"Ana","email":"ana@example.com","message":"Hello"}`

func (s *PipelineSuite) TestValidSubmissionIsDispatched() {
	var sent *models.Message
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *models.Message) (*models.Receipt, error) {
			sent = msg
			return &models.Receipt{ID: "re_1"}, nil
		})

	rec := s.post("198.51.100.1", anaBody)

	s.Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(sent)
	s.Equal("ana@example.com", sent.ReplyTo)
	s.Contains(sent.Subject, "Ana")
	s.Contains(sent.HTML, "Hello")
}

func (s *PipelineSuite) TestFourthRequestInWindowIsRejected() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(&models.Receipt{ID: "re"}, nil).Times(3)

	for i := range 3 {
		rec := s.post("198.51.100.2", anaBody)
		s.Equal(http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := s.post("198.51.100.2", anaBody)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("3600", rec.Header().Get("Retry-After"))
}

func (s *PipelineSuite) TestWindowResetAllowsAgain() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(&models.Receipt{ID: "re"}, nil).Times(4)
	for range 3 {
		s.post("198.51.100.3", anaBody)
	}
	s.Equal(http.StatusTooManyRequests, s.post("198.51.100.3", anaBody).Code)

	s.now = s.now.Add(time.Hour + time.Second)
	rec := s.post("198.51.100.3", anaBody)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("2", rec.Header().Get("X-RateLimit-Remaining"))
}

func (s *PipelineSuite) TestClientsAreCountedSeparately() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(&models.Receipt{ID: "re"}, nil).Times(4)
	for range 3 {
		s.post("198.51.100.4", anaBody)
	}

	s.Equal(http.StatusOK, s.post("198.51.100.5", anaBody).Code)
}

func (s *PipelineSuite) TestMissingFieldNeverDispatches() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	rec := s.post("198.51.100.6", `{"name":"","email":"x@x.com","message":"hi"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "All fields are required")
}

func (s *PipelineSuite) TestMessageAtMaximumPasses() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(&models.Receipt{ID: "re"}, nil)

	body := `{"name":"Ana","email":"ana@example.com","message":"` + strings.Repeat("a", models.MaxMessageLength) + `"}`
	rec := s.post("198.51.100.7", body)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *PipelineSuite) TestTrailingDataAfterBodyIsRejected() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	rec := s.post("198.51.100.8", anaBody+"garbage}{")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Invalid request body")
}

func (s *PipelineSuite) TestUndeclaredOversizedBodyIsRejected() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	body := anaBody + strings.Repeat(" ", 2*models.MaxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Contains(rec.Body.String(), "Request payload too large")
}

func (s *PipelineSuite) TestPaddedEmailIsRejected() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	rec := s.post("198.51.100.10", `{"name":"Ana","email":"  ana@example.com ","message":"Hello"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Invalid email address")
}
