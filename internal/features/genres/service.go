package genres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xyz-asif/ebooks/internal/pkg/cache"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const listCacheKey = "genres:all"

var ErrInvalidGenres = errors.New("Some genres are invalid")

type Service struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
}

func NewService(store Store, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Service{store: store, cache: c, ttl: ttl}
}

// Seed inserts the default taxonomy when the collection is empty.
func (s *Service) Seed(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	if err := s.store.InsertMany(ctx, Defaults); err != nil {
		return 0, err
	}
	_ = s.cache.Delete(ctx, listCacheKey)
	logger.Info("seeded %d genres", len(Defaults))
	return len(Defaults), nil
}

// List returns every genre sorted by name
func (s *Service) List(ctx context.Context) ([]Genre, error) {
	var cached []Genre
	if found, err := s.cache.Get(ctx, listCacheKey, &cached); err == nil && found {
		return cached, nil
	} else if err != nil {
		logger.Warn("genre cache read: %v", err)
	}

	genres, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, listCacheKey, genres, s.ttl); err != nil {
		logger.Warn("genre cache write: %v", err)
	}
	return genres, nil
}

// Resolve maps genre names or ids to ids. Any unknown value fails the whole set.
func (s *Service) Resolve(ctx context.Context, values []string) ([]primitive.ObjectID, error) {
	seen := make(map[string]struct{}, len(values))
	var names []string
	var ids []primitive.ObjectID
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}

		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			ids = append(ids, oid)
		} else {
			names = append(names, v)
		}
	}
	if len(seen) == 0 {
		return nil, ErrInvalidGenres
	}

	found, err := s.store.FindByNamesOrIDs(ctx, names, ids)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]struct{}, len(found))
	out := make([]primitive.ObjectID, 0, len(found))
	for _, g := range found {
		_, byName := seen[g.Name]
		_, byID := seen[g.ID.Hex()]
		if !byName && !byID {
			continue
		}
		if byName {
			matched[g.Name] = struct{}{}
		}
		if byID {
			matched[g.ID.Hex()] = struct{}{}
		}
		out = append(out, g.ID)
	}
	if len(matched) != len(seen) {
		return nil, ErrInvalidGenres
	}
	return dedupe(out), nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
