package storage

import (
	"context"
	"errors"
	"fmt"
)

const TokenKey = "session.token"

// TokenStore persists the session token as a preference. Saving an empty
// token deletes it.
type TokenStore struct {
	repo Repository
}

func NewTokenStore(repo Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	p, err := s.repo.GetPreference(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return p.Value, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		err := s.repo.DeletePreference(ctx, TokenKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("clear token: %w", err)
		}
		return nil
	}
	if err := s.repo.PutPreference(ctx, Preference{Key: TokenKey, Value: token}); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
