package content

import (
	"context"
	"time"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTTL = 10 * time.Minute

	aboutUsKey  = "about-us"
	homePageKey = "home-page"
	toursKey    = "tours"
	categoryKey = "tours:category:"
)

// Service fetches read-only display content. Content is not critical to the
// session: every failure is logged and degrades to an empty value.
type Service struct {
	client *actor.Client
	cache  *cache.Cache
}

func NewService(client *actor.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (s *Service) AboutUs(ctx context.Context) string {
	if x, found := s.cache.Get(aboutUsKey); found {
		return x.(string)
	}
	text, err := s.client.GetAboutUsContent(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch about us content")
		return ""
	}
	s.cache.SetDefault(aboutUsKey, text)
	return text
}

// HomePage returns the featured tours of the home page.
func (s *Service) HomePage(ctx context.Context) []actor.Tour {
	return s.tours(ctx, homePageKey, s.client.GetHomePageContent)
}

func (s *Service) Tours(ctx context.Context) []actor.Tour {
	return s.tours(ctx, toursKey, s.client.GetTours)
}

func (s *Service) ToursByCategory(ctx context.Context, categoryID string) []actor.Tour {
	return s.tours(ctx, categoryKey+categoryID, func(ctx context.Context) ([]actor.Tour, error) {
		return s.client.GetToursByCategory(ctx, categoryID)
	})
}

// Invalidate drops all cached content.
func (s *Service) Invalidate() {
	s.cache.Flush()
}

func (s *Service) tours(ctx context.Context, key string, fetch func(context.Context) ([]actor.Tour, error)) []actor.Tour {
	if x, found := s.cache.Get(key); found {
		return x.([]actor.Tour)
	}
	tours, err := fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("content", key).Msg("Failed to fetch tours")
		return []actor.Tour{}
	}

	valid := make([]actor.Tour, 0, len(tours))
	for _, t := range tours {
		if t.AvailableSpots < 0 {
			log.Warn().Str("tour", t.ID).Int("available_spots", t.AvailableSpots).Msg("Dropping tour with negative availability")
			continue
		}
		valid = append(valid, t)
	}
	s.cache.SetDefault(key, valid)
	return valid
}
