package redis

import "strings"

// Every key lives under "fd:". Blank parts are dropped so a missing scope
// never yields "::".
const (
	keyNamespace      = "fd"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	lockPrefix        = "lock"
	checkoutScope     = "checkout"
)

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

func (c *Client) CheckoutLockKey(customerID string) string {
	return buildKey(lockPrefix, checkoutScope, customerID)
}

func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
