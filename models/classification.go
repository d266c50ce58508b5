package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type Classification string

const (
	ClassUpcoming Classification = "upcoming"
	ClassPast     Classification = "past"
	ClassDraft    Classification = "draft"
)

func (c Classification) Valid() bool {
	return c == ClassUpcoming || c == ClassPast || c == ClassDraft
}

// StatusOverride forces an event into a classification. The zero value is
// OverrideAuto, which leaves classification to the event's dates.
type StatusOverride int

const (
	OverrideAuto StatusOverride = iota
	OverrideUpcoming
	OverridePast
	OverrideDraft
)

var overrideNames = map[StatusOverride]string{
	OverrideAuto:     "auto",
	OverrideUpcoming: "upcoming",
	OverridePast:     "past",
	OverrideDraft:    "draft",
}

func (o StatusOverride) String() string {
	if s, ok := overrideNames[o]; ok {
		return s
	}
	return "auto"
}

// ParseStatusOverride accepts "" as auto and rejects anything unknown.
func ParseStatusOverride(s string) (StatusOverride, error) {
	if s == "" {
		return OverrideAuto, nil
	}
	for o, name := range overrideNames {
		if name == s {
			return o, nil
		}
	}
	return OverrideAuto, fmt.Errorf("unknown status override %q", s)
}

func (o StatusOverride) forced() (Classification, bool) {
	switch o {
	case OverrideUpcoming:
		return ClassUpcoming, true
	case OverridePast:
		return ClassPast, true
	case OverrideDraft:
		return ClassDraft, true
	}
	return "", false
}

func (o StatusOverride) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *StatusOverride) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseStatusOverride(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o StatusOverride) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(o.String())
}

// UnmarshalBSONValue decodes unknown stored strings as auto so a bad document
// never blocks a listing.
func (o *StatusOverride) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bsontype.String {
		*o = OverrideAuto
		return nil
	}
	raw := bson.RawValue{Type: t, Value: data}
	parsed, err := ParseStatusOverride(raw.StringValue())
	if err != nil {
		parsed = OverrideAuto
	}
	*o = parsed
	return nil
}

// ClassifyPolicy holds the tunable parts of classification.
type ClassifyPolicy struct {
	// DefaultDuration is how long an event without an end time is assumed to last.
	DefaultDuration time.Duration
}

var DefaultClassifyPolicy = ClassifyPolicy{DefaultDuration: 6 * time.Hour}

// Classify derives the display bucket of e at now. An event that has started
// but not ended counts as upcoming.
func (e *Event) Classify(now time.Time, p ClassifyPolicy) Classification {
	if c, ok := e.StatusOverride.forced(); ok {
		return c
	}
	if e.Status != EventPublished {
		return ClassDraft
	}
	if e.StartDateTime.IsZero() {
		return ClassDraft
	}

	duration := p.DefaultDuration
	if duration <= 0 {
		duration = DefaultClassifyPolicy.DefaultDuration
	}
	effectiveEnd := e.StartDateTime.Add(duration)
	if e.EndDateTime != nil && !e.EndDateTime.IsZero() {
		effectiveEnd = *e.EndDateTime
	}

	if e.StartDateTime.After(now) {
		return ClassUpcoming
	}
	if effectiveEnd.Before(now) {
		return ClassPast
	}
	return ClassUpcoming
}

// Classified returns a copy of e with Classification filled in.
func (e Event) Classified(now time.Time, p ClassifyPolicy) Event {
	e.Classification = e.Classify(now, p)
	return e
}
