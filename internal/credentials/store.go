// Package credentials resolves the bearer token the console presents
// to the entity store. The token is deposited by an external login
// flow; absence is tolerated and requests simply go out
// unauthenticated.
package credentials

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Source yields the current entity store bearer token. An empty token
// with a nil error means "no credentials", which is a supported state.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// StaticSource returns a fixed token, typically from the environment.
type StaticSource string

// Token implements Source.
func (s StaticSource) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// RedisStore reads the token the login flow wrote to Redis, falling
// back to a static token when the key is empty or Redis is down.
type RedisStore struct {
	client   *redis.Client
	key      string
	fallback string
	logger   *zap.Logger
}

// NewRedisStore constructs the store.
func NewRedisStore(client *redis.Client, key, fallback string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, fallback: fallback, logger: logger}
}

// Token implements Source.
func (s *RedisStore) Token(ctx context.Context) (string, error) {
	if s.client == nil {
		return s.fallback, nil
	}
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("credential store unreachable", zap.Error(err))
		}
		token = s.fallback
	}
	if token != "" {
		s.warnIfExpired(token)
	}
	return token, nil
}

// warnIfExpired peeks at the token without verifying its signature; a
// stale credential still goes out (the store decides), but the
// operator gets a hint in the logs.
func (s *RedisStore) warnIfExpired(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT; nothing to inspect.
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		s.logger.Warn("entity store token is expired", zap.Time("expired_at", exp.Time))
	}
}
