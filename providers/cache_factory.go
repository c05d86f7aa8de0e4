package providers

import (
	"fmt"

	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/providers/cache"
)

// NewCacheFromConfig creates the cache backend selected by configuration
func NewCacheFromConfig(cfg *config.CacheConfig) (Cache, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		redisCache, err := cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, errors.NewConfigurationError("failed to connect to redis", err)
		}
		return redisCache, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
