package domain

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Status is the review outcome recorded for a card.
type Status int

const (
	Unset Status = iota
	Known
	Unknown
)

var (
	statusNames  = [...]string{Unset: "unset", Known: "known", Unknown: "unknown"}
	statusByName = map[string]Status{
		"known":   Known,
		"unknown": Unknown,
	}
)

var (
	_ fmt.Stringer             = Status(0)
	_ json.Marshaler           = Status(0)
	_ json.Unmarshaler         = (*Status)(nil)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= Unset && s <= Unknown
}

// Outcome reports whether s can be recorded by marking a card.
func (s Status) Outcome() bool {
	return s == Known || s == Unknown
}

func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses "known" or "unknown".
func ParseStatus(name string) (Status, error) {
	v, ok := statusByName[name]
	if !ok {
		return Unset, fmt.Errorf("invalid status: %q", name)
	}
	return v, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalJSON encodes Unset as null and the outcomes as strings.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case Unset:
		return []byte("null"), nil
	case Known, Unknown:
		return json.Marshal(statusNames[s])
	}
	return nil, fmt.Errorf("invalid status: %d", int(s))
}

// UnmarshalJSON accepts null, "known" or "unknown".
func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Unset
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid status: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}
