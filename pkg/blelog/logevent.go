package blelog

import (
	"encoding/json"
	"fmt"
)

// Event is one entry of the unified log stream.
//
// Subject is the UUID of the device, service, characteristic or descriptor the
// event is about; it is empty for adapter-level events. Payload is a status
// message, a "Value: " prefixed hex dump, or empty when no data is associated.
type Event struct {
	Category Flags
	Subject  string
	Payload  string
}

// HasSubject reports whether the event is about a specific device or attribute
func (e Event) HasSubject() bool {
	return e.Subject != ""
}

// String renders the event as a single trace line: [Category](subject) payload
func (e Event) String() string {
	if e.Payload == "" {
		return fmt.Sprintf("[%s](%s)", e.Category, e.Subject)
	}
	return fmt.Sprintf("[%s](%s) %s", e.Category, e.Subject, e.Payload)
}

type eventJSON struct {
	Category string `json:"category"`
	Subject  string `json:"subject,omitempty"`
	Payload  string `json:"payload"`
}

// MarshalJSON renders the category by name
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Category: e.Category.String(),
		Subject:  e.Subject,
		Payload:  e.Payload,
	})
}

// UnmarshalJSON accepts the output of MarshalJSON
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	category, err := ParseFlags(raw.Category)
	if err != nil {
		return err
	}
	*e = Event{Category: category, Subject: raw.Subject, Payload: raw.Payload}
	return nil
}
