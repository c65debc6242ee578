// Package insight serves the advisory feed: persisted market/demand/weather
// insights plus a synthesized weather advisory. None of it affects booking
// correctness; it exists for the farmer dashboard.
package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	redisx "github.com/kisan-sangraha/sangraha-go/internal/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
	redisrepo "github.com/kisan-sangraha/sangraha-go/internal/repository/redis"
)

const cacheTTL = 60 * time.Second

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
}

func New(store repository.Store, cache *redisrepo.Cache) *Service {
	return &Service{store: store, cache: cache}
}

// List returns insights newest first, with the live weather advisory
// appended so the feed is never empty.
func (s *Service) List(ctx context.Context) ([]domain.Insight, error) {
	const op = "service.insight.List"

	load := func(ctx context.Context) ([]domain.Insight, error) {
		stored, err := s.store.Insights().List(ctx)
		if err != nil {
			return nil, err
		}
		return append(stored, weatherInsight()), nil
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyInsights(), cacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}

// Weather returns the current advisory. A real deployment would consult an
// external provider; the advisory is static fallback text until then.
func (s *Service) Weather(ctx context.Context) domain.Weather {
	return domain.Weather{
		Temperature: 36,
		Condition:   "Hot & Clear",
		Humidity:    30,
		Suggestion:  "High temperature expected – storing produce recommended",
	}
}

func weatherInsight() domain.Insight {
	return domain.Insight{
		ID:        "dyn-w1",
		Type:      domain.InsightWeather,
		Title:     "Extreme Heat Alert",
		Message:   "High temperature expected – storing produce recommended.",
		Severity:  "danger",
		Icon:      "sun",
		Timestamp: time.Now(),
	}
}
