package social

import (
	"context"
	"strings"

	"minigram/types"
)

// Search finds posts whose caption contains query and profiles whose
// username, display name or bio contains it, ignoring case. Each profile
// appears once. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, query string) (*types.SearchResults, error) {
	results := &types.SearchResults{
		Query:    query,
		Posts:    []types.Post{},
		Profiles: []types.Profile{},
	}

	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	posts, err := s.store.Posts().Search(ctx, query)
	if err != nil {
		return nil, err
	}

	profiles, err := s.store.Profiles().Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results.Posts = posts
	results.Profiles = profiles
	return results, nil
}
