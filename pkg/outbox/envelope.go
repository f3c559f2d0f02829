package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorRef is the user whose request produced the event.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON document stored in outbox_events.payload and
// published verbatim as the message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// ErrMalformedEnvelope is wrapped by every DecodeEnvelope failure.
var ErrMalformedEnvelope = errors.New("malformed outbox envelope")

// DecodeEnvelope parses raw and checks the fields consumers rely on.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	switch {
	case env.Version < 1 || env.Version > CurrentVersion:
		return env, fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, env.Version)
	case env.EventID == "":
		return env, fmt.Errorf("%w: eventId missing", ErrMalformedEnvelope)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return env, fmt.Errorf("%w: data missing", ErrMalformedEnvelope)
	}
	return env, nil
}
