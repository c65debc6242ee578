package service

import (
	"log/slog"

	redisx "github.com/kisan-sangraha/sangraha-go/internal/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
	redisrepo "github.com/kisan-sangraha/sangraha-go/internal/repository/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/service/auth"
	"github.com/kisan-sangraha/sangraha-go/internal/service/booking"
	"github.com/kisan-sangraha/sangraha-go/internal/service/facility"
	"github.com/kisan-sangraha/sangraha-go/internal/service/insight"
)

type Services struct {
	Auth     *auth.Service
	Facility *facility.Service
	Booking  *booking.Service
	Insight  *insight.Service
}

type Config struct {
	Auth auth.Config
}

// NewServices wires the services over the injected store. cache, pubsub and
// limiter may be nil (tests run without redis).
func NewServices(
	store repository.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.FacilitiesPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Auth:     auth.New(store, cfg.Auth),
		Facility: facility.New(store, cache, pubsub),
		Booking:  booking.New(store, cache, pubsub, limiter, logger),
		Insight:  insight.New(store, cache),
	}
}
