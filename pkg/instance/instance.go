// Package instance names the running process for logs and lock ownership.
package instance

import (
	"os"
	"strings"
)

const defaultID = "fooddash-0"

// GetID prefers WORKER_ID, then the host name, so replicas in the same
// deployment stay distinguishable.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv("WORKER_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
