package service

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/rs/zerolog"
)

const (
	searchCacheSize  = 256
	searchLimit      = 20
	fallbackListSize = 500
)

// UserSearch finds platform users to invite. The backend search function may
// be unavailable; in that case results degrade to a client-side substring
// filter over a bounded recent-user listing.
type UserSearch struct {
	users backend.UserAPI
	cache *lru.Cache[string, []domain.User]
	log   zerolog.Logger
}

// NewUserSearch creates a user search service.
func NewUserSearch(users backend.UserAPI, log zerolog.Logger) (*UserSearch, error) {
	cache, err := lru.New[string, []domain.User](searchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}
	return &UserSearch{
		users: users,
		cache: cache,
		log:   log.With().Str("component", "user_search").Logger(),
	}, nil
}

// Search returns users matching the free-text query.
func (s *UserSearch) Search(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}

	key := strings.ToLower(query)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	users, err := s.users.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("Backend user search unavailable, falling back to client-side filter")
		users, err = s.fallbackSearch(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	s.cache.Add(key, users)
	return users, nil
}

func (s *UserSearch) fallbackSearch(ctx context.Context, query string) ([]domain.User, error) {
	listing, err := s.users.ListRecentUsers(ctx, fallbackListSize)
	if err != nil {
		return nil, fmt.Errorf("list users for fallback search: %w", err)
	}

	matches := make([]domain.User, 0, searchLimit)
	for _, u := range listing {
		if strings.Contains(strings.ToLower(u.Email), query) ||
			strings.Contains(strings.ToLower(u.FullName()), query) {
			matches = append(matches, u)
			if len(matches) == searchLimit {
				break
			}
		}
	}
	return matches, nil
}
