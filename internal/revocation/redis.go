package revocation

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix is the namespace revoked tokens are listed under.
const KeyPrefix = "blacklist:access:"

// RedisList answers whether an auth_token has been revoked. It never writes.
// The list is an optional external feed: whichever operator tooling revokes a
// token sets the key, usually with a TTL matching the token lifetime.
type RedisList struct {
	client *redis.Client
}

// NewRedisList wraps client. A nil client yields a list that revokes nothing.
func NewRedisList(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

// IsRevoked reports whether token is present in the revocation list.
func (l *RedisList) IsRevoked(ctx context.Context, token string) (bool, error) {
	if l == nil || l.client == nil {
		return false, nil
	}
	n, err := l.client.Exists(ctx, KeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
