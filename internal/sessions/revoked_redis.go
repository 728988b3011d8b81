package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Optional Redis client backing the logout revocation list. When unset,
// logout is purely client-side and session tokens stay valid until expiry.
var revocationClient *redis.Client

// SetRevocationClient wires the Redis client used for session revocation.
// Passing nil disables revocation checks.
func SetRevocationClient(c *redis.Client) {
	revocationClient = c
}

func revocationKey(token string) string {
	return "revoked:session:" + token
}

// RevokeSession marks a session token as logged out for the given TTL. The
// TTL should match the token's remaining lifetime so the key expires with it.
func RevokeSession(ctx context.Context, token string, ttl time.Duration) error {
	if revocationClient == nil || ttl <= 0 {
		return nil
	}
	return revocationClient.Set(ctx, revocationKey(token), "1", ttl).Err()
}

// IsSessionRevoked reports whether the token has been revoked. Without a
// configured client it always reports false.
func IsSessionRevoked(ctx context.Context, token string) (bool, error) {
	if revocationClient == nil {
		return false, nil
	}
	n, err := revocationClient.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
