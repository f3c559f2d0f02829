package enums

import (
	"fmt"
	"strings"
)

// RiderAvailability tells dispatchers whether a rider is taking deliveries.
type RiderAvailability string

const (
	RiderOnline  RiderAvailability = "online"
	RiderOffline RiderAvailability = "offline"
)

func (a RiderAvailability) String() string {
	return string(a)
}

func (a RiderAvailability) IsValid() bool {
	return a == RiderOnline || a == RiderOffline
}

// ParseRiderAvailability accepts "online" or "offline" in any case.
func ParseRiderAvailability(value string) (RiderAvailability, error) {
	a := RiderAvailability(strings.ToLower(strings.TrimSpace(value)))
	if !a.IsValid() {
		return "", fmt.Errorf("invalid rider availability %q", value)
	}
	return a, nil
}
