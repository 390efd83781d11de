package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAccountRegistered  = "auth.account.registered"
	TypeLoginCodeRequested = "auth.login.code_requested"
	TypeLoginSucceeded     = "auth.login.succeeded"

	aggregateAccount = "account"
	source           = "auth-service"
)

// Event is the envelope written to Kafka.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	Data          json.RawMessage `json:"data"`
}

// accountData is the payload of every account event. The email is left out
// of the audit stream on purpose; consumers join on account_id.
type accountData struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

func newEvent(eventType, aggregateID string, data any, now time.Time) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateAccount,
		Version:       1,
		Timestamp:     now.UTC(),
		Source:        source,
		Data:          raw,
	}, nil
}
