package session

import (
	"context"
	"fmt"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/database"
)

// NewStore builds the store selected by cfg.SessionStore. The returned close
// function releases any connection the store opened.
func NewStore(ctx context.Context, cfg *config.ClientConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionStore {
	case config.SessionStoreFile, "":
		return NewFileStore(cfg.SessionPath), noop, nil
	case config.SessionStoreMemory:
		return NewMemoryStore(), noop, nil
	case config.SessionStoreRedis:
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return NewRedisStore(client, cfg.SessionKey, cfg.SessionTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
