package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds the caller's
// token, so a lock that expired and was taken by someone else survives.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// AcquireLock claims key for ttl. The returned token must be handed back to
// ReleaseLock; ok is false while another holder owns the key.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	if c.store == nil {
		return "", false, errNotInitialized
	}
	token = uuid.NewString()
	ok, err = c.store.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseLock reports whether token still owned key and was removed.
func (c *Client) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	n, err := c.store.Eval(ctx, releaseScript, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
