package enums

import "fmt"

// DeliveryStatus is the order delivery lifecycle state.
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusDispatched DeliveryStatus = "dispatched"
	DeliveryStatusOnTheWay   DeliveryStatus = "on-the-way"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusCancelled  DeliveryStatus = "cancelled"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusDispatched,
	DeliveryStatusOnTheWay,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// deliveryTransitions lists the allowed successor states. Terminal states map
// to an empty list.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:    {DeliveryStatusDispatched, DeliveryStatusCancelled},
	DeliveryStatusDispatched: {DeliveryStatusOnTheWay, DeliveryStatusCancelled},
	DeliveryStatusOnTheWay:   {DeliveryStatusDelivered},
	DeliveryStatusDelivered:  {},
	DeliveryStatusCancelled:  {},
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this state.
func (d DeliveryStatus) IsTerminal() bool {
	next, ok := deliveryTransitions[d]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether next is a legal successor of d.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range deliveryTransitions[d] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus. The legacy
// spelling "on the way" is accepted.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	if value == "on the way" {
		return DeliveryStatusOnTheWay, nil
	}
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
