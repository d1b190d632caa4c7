package internal

import (
	"encoding/json"
	"sort"
	"time"
)

// AdaptedEvent is the neutral event shape adapters emit. Timestamps may
// be missing; the ingest pipeline fills them from session boundaries.
type AdaptedEvent struct {
	Kind       EventKind  `json:"kind"`
	TS         *time.Time `json:"ts,omitempty"`
	Actor      Actor      `json:"actor"`
	Scope      *Scope     `json:"scope,omitempty"`
	Payload    Payload    `json:"payload"`
	Derived    bool       `json:"derived,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Visibility Visibility `json:"visibility,omitempty"`
}

type adaptedEventWire struct {
	Kind       EventKind       `json:"kind"`
	TS         *time.Time      `json:"ts,omitempty"`
	Actor      Actor           `json:"actor"`
	Scope      *Scope          `json:"scope,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Derived    bool            `json:"derived,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Visibility Visibility      `json:"visibility,omitempty"`
}

// UnmarshalJSON decodes an adapted event, resolving the payload shape
// from the kind the same way CanonicalEvent does.
func (e *AdaptedEvent) UnmarshalJSON(data []byte) error {
	var w adaptedEventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	payload, err := DecodePayload(w.Kind, w.Payload)
	if err != nil {
		return err
	}
	e.Kind = w.Kind
	e.TS = w.TS
	e.Actor = w.Actor
	e.Scope = w.Scope
	e.Payload = payload
	e.Derived = w.Derived
	e.Confidence = w.Confidence
	e.Visibility = w.Visibility
	return nil
}

// AdaptedSession is the neutral session shape adapters emit.
type AdaptedSession struct {
	SessionID  string         `json:"session_id,omitempty"`
	UserPrompt string         `json:"user_prompt,omitempty"`
	Goal       string         `json:"goal,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	Events     []AdaptedEvent `json:"events"`
	Source     string         `json:"source"`
}

// EarliestTimestamp returns the earliest known time of the incoming
// session: started_at if set, else the smallest event timestamp.
func (s *AdaptedSession) EarliestTimestamp() time.Time {
	earliest := time.Time{}
	if s.StartedAt != nil {
		earliest = *s.StartedAt
	}
	for _, event := range s.Events {
		if event.TS == nil || event.TS.IsZero() {
			continue
		}
		if earliest.IsZero() || event.TS.Before(earliest) {
			earliest = *event.TS
		}
	}
	return earliest
}

// RepresentativePrompt extracts the text used for fingerprint matching:
// the user prompt, else the first intent's description or title, else
// the goal. The result is already normalized; empty means unmatchable.
func (s *AdaptedSession) RepresentativePrompt() string {
	if prompt := NormalizePrompt(s.UserPrompt); prompt != "" {
		return prompt
	}
	for _, event := range s.Events {
		if event.Kind != KindIntent {
			continue
		}
		if p, ok := event.Payload.(*IntentPayload); ok {
			if desc := NormalizePrompt(p.Description); desc != "" {
				return desc
			}
			if title := NormalizePrompt(p.Title); title != "" {
				return title
			}
		}
		break
	}
	return NormalizePrompt(s.Goal)
}

// Adapter converts vendor-specific raw session logs into the neutral
// AdaptedSession shape.
type Adapter interface {
	Name() string
	Parse(raw []byte) (*AdaptedSession, error)
}

// AdapterRegistry maps adapter names to implementations, resolved once
// at startup.
type AdapterRegistry struct {
	adapters map[string]Adapter
}

// NewAdapterRegistry builds the registry with every shipped adapter.
func NewAdapterRegistry() *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[string]Adapter)}
	r.Register(&JSONLAdapter{})
	r.Register(&CursorAdapter{})
	return r
}

// Register adds an adapter; later registrations with the same name win.
func (r *AdapterRegistry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Lookup resolves an adapter by name.
func (r *AdapterRegistry) Lookup(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, &UnsupportedAdapterError{Name: name, Known: r.Names()}
	}
	return a, nil
}

// Names lists the registered adapter names, sorted.
func (r *AdapterRegistry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
