package enums

// OutboxDLQErrorReason records why an event was moved to the dead letter table.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonUnroutable  OutboxDLQErrorReason = "unroutable"
	OutboxDLQReasonBadPayload  OutboxDLQErrorReason = "bad_payload"
)

// IsValid reports whether the reason is known.
func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonUnroutable, OutboxDLQReasonBadPayload:
		return true
	}
	return false
}
