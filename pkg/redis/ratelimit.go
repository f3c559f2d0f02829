package redis

import (
	"context"
	"time"
)

// fixedWindowScript increments the window counter and starts its expiry on
// the first hit, atomically, so a crash between the two can never leave a
// counter without a TTL.
const fixedWindowScript = `local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`

// FixedWindowAllow counts a hit against scope and reports whether the
// window's count is still within limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.store == nil {
		return false, 0, errNotInitialized
	}
	count, err := c.store.Eval(ctx, fixedWindowScript, []string{c.RateLimitKey(scope)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}
