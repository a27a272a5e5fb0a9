package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/ratelimit/metrics"
	"folio/internal/ratelimit/models"
	"folio/internal/ratelimit/service/mocks"
	"folio/internal/ratelimit/store/window"
	"folio/pkg/requestcontext"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type LimiterSuite struct {
	suite.Suite
	now     time.Time
	metrics *metrics.Metrics
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *LimiterSuite) newLimiter(store Store, opts ...Option) *Limiter {
	opts = append([]Option{WithMetrics(s.metrics), WithClock(func() time.Time { return s.now })}, opts...)
	l, err := New(store, opts...)
	s.Require().NoError(err)
	return l
}

func (s *LimiterSuite) TestDefaultsAreThreePerHour() {
	l, err := New(window.NewInMemoryStore())
	s.Require().NoError(err)
	s.Equal(3, l.Limit())
	s.Equal(time.Hour, l.Window())
}

func (s *LimiterSuite) TestRejectsInvalidConfiguration() {
	_, err := New(nil)
	s.Error(err)
	_, err = New(window.NewInMemoryStore(), WithLimit(0))
	s.Error(err)
	_, err = New(window.NewInMemoryStore(), WithWindow(-time.Second))
	s.Error(err)
}

func (s *LimiterSuite) TestFourthRequestInWindowIsDenied() {
	l := s.newLimiter(window.NewInMemoryStore())
	ctx := context.Background()

	for i := range 3 {
		s.True(l.Allow(ctx, "203.0.113.9").Allowed, "request %d", i+1)
	}
	d := l.Allow(ctx, "203.0.113.9")

	s.False(d.Allowed)
	s.Equal(3600, d.RetryAfter)
	s.Equal(3.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues(metrics.DecisionAllowed)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues(metrics.DecisionDenied)))
}

func (s *LimiterSuite) TestWindowExpiryAllowsAgain() {
	l := s.newLimiter(window.NewInMemoryStore())
	ctx := context.Background()
	for range 4 {
		l.Allow(ctx, "203.0.113.9")
	}

	s.now = s.now.Add(time.Hour + time.Second)
	d := l.Allow(ctx, "203.0.113.9")

	s.True(d.Allowed)
	s.Equal(2, d.Remaining)
}

func (s *LimiterSuite) TestConfiguredLimitAndWindow() {
	l := s.newLimiter(window.NewInMemoryStore(), WithLimit(1), WithWindow(time.Minute))
	ctx := context.Background()

	s.True(l.Allow(ctx, "unknown").Allowed)
	s.False(l.Allow(ctx, "unknown").Allowed)
	s.now = s.now.Add(time.Minute + time.Millisecond)
	s.True(l.Allow(ctx, "unknown").Allowed)
}

func (s *LimiterSuite) TestUsesRequestTimeWithoutClock() {
	store := window.NewInMemoryStore()
	l, err := New(store)
	s.Require().NoError(err)
	ctx := requestcontext.WithTime(context.Background(), s.now)

	d := l.Allow(ctx, "203.0.113.9")

	s.Equal(s.now.Add(time.Hour), d.ResetAt)
}

func (s *LimiterSuite) TestStoreFailureFailsOpen() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Hit(gomock.Any(), "ip:203.0.113.9", 3, time.Hour, s.now).
		Return(nil, errors.New("connection refused"))

	d := s.newLimiter(store).Allow(context.Background(), "203.0.113.9")

	s.True(d.Allowed)
	s.True(d.Degraded)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues(metrics.DecisionError)))
}

func (s *LimiterSuite) TestKeysAreEscapedBeforeStorage() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Hit(gomock.Any(), "ip:2001_cdb8_c_c1", 3, time.Hour, s.now).
		Return(&models.Decision{Allowed: true, Limit: 3, Remaining: 2}, nil)

	s.True(s.newLimiter(store).Allow(context.Background(), "2001:db8::1").Allowed)
}
