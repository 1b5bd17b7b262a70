package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/store/bucket"
)

type LimiterSuite struct {
	suite.Suite
	ctx     context.Context
	limiter *Limiter
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.ctx = context.Background()
	s.limiter = NewLimiter(bucket.NewInMemoryBucketStore(), map[models.EndpointClass]models.Limit{
		models.ClassAuth:     {Requests: 2, Window: time.Minute},
		models.ClassCheckout: {Requests: 1, Window: time.Minute},
	})
}

func (s *LimiterSuite) TestClassesCountSeparately() {
	for range 2 {
		res, err := s.limiter.Check(s.ctx, models.ClassAuth, "10.0.0.1")
		s.Require().NoError(err)
		s.True(res.Allowed)
	}
	res, err := s.limiter.Check(s.ctx, models.ClassAuth, "10.0.0.1")
	s.Require().NoError(err)
	s.False(res.Allowed)

	res, err = s.limiter.Check(s.ctx, models.ClassCheckout, "10.0.0.1")
	s.Require().NoError(err)
	s.True(res.Allowed, "checkout has its own window")
}

func (s *LimiterSuite) TestClientsCountSeparately() {
	_, err := s.limiter.Check(s.ctx, models.ClassCheckout, "10.0.0.1")
	s.Require().NoError(err)

	res, err := s.limiter.Check(s.ctx, models.ClassCheckout, "10.0.0.2")
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *LimiterSuite) TestUnlimitedClassPassesThrough() {
	for range 20 {
		res, err := s.limiter.Check(s.ctx, models.ClassContact, "10.0.0.1")
		s.Require().NoError(err)
		s.True(res.Allowed)
	}
}

type failingBuckets struct{}

func (failingBuckets) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("connection refused")
}

func (s *LimiterSuite) TestStoreErrorIsWrapped() {
	limiter := NewLimiter(failingBuckets{}, map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 1, Window: time.Minute},
	})
	_, err := limiter.Check(s.ctx, models.ClassAuth, "10.0.0.1")
	s.Require().Error(err)
	s.Contains(err.Error(), "check auth limit")
}
