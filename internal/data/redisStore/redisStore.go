package redisStore

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    = logger_i.NewLogger("Redis Store")
	once      sync.Once
)

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared store for DB number dbType, or nil when
// redis cannot be reached.
func GetRedisStore(ctx context.Context, settings config.Settings, dbType int) *Store {
	mu.RLock()
	instance, exists := instances[dbType]
	mu.RUnlock()
	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()
	if instance, exists = instances[dbType]; exists {
		return instance
	}
	return createNewStore(ctx, settings, dbType)
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for _, store := range instances {
		if err := store.client.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
	}
	logger.Info("Redis Store Closed successfully")
}

func createNewStore(ctx context.Context, settings config.Settings, dbType int) *Store {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  settings.RedisAddr,
		Password:              settings.RedisPassword,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "addr", settings.RedisAddr, "error", err)
		_ = newClient.Close()
		return nil
	}
	logger.Info("Redis store init successfully", "db", dbType)

	newStore := &Store{client: newClient, Type: dbType}
	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore
}

// NewStore wraps an existing client; tests point it at miniredis.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}
