package enums

import (
	"fmt"
	"strings"
)

// PaymentMethodType identifies how a customer settles an order.
type PaymentMethodType string

const (
	PaymentMethodCOD   PaymentMethodType = "COD"
	PaymentMethodGCash PaymentMethodType = "GCash"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodCOD,
	PaymentMethodGCash,
}

// String implements fmt.Stringer.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodType.
func (p PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType matches case-insensitively ("cod", "gcash").
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	for _, candidate := range validPaymentMethodTypes {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method type %q", value)
}
