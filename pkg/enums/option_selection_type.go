package enums

import "fmt"

// OptionSelectionType controls how many options of a group may be chosen.
type OptionSelectionType string

const (
	OptionSelectionSingle   OptionSelectionType = "single"
	OptionSelectionMultiple OptionSelectionType = "multiple"
)

// IsValid reports whether the value is a known OptionSelectionType.
func (o OptionSelectionType) IsValid() bool {
	return o == OptionSelectionSingle || o == OptionSelectionMultiple
}

// ParseOptionSelectionType converts raw input, defaulting empty input to single.
func ParseOptionSelectionType(value string) (OptionSelectionType, error) {
	if value == "" {
		return OptionSelectionSingle, nil
	}
	candidate := OptionSelectionType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid selection type %q", value)
	}
	return candidate, nil
}
