package domain

import (
	"encoding/json"
	"fmt"
)

// EventKind tags the serialized form of an Event.
type EventKind string

const (
	KindTrade           EventKind = "Trade"
	KindPoolCreated     EventKind = "PoolCreated"
	KindPumpfunComplete EventKind = "PumpfunComplete"
)

// Event is the sum of the three normalized event types. Exactly one of the
// record pointers is set. On the wire it is the record's fields flattened
// with a "kind" tag, matching what the downstream consumes.
type Event struct {
	Trade           *TradeRecord
	PoolCreated     *PoolCreatedRecord
	PumpfunComplete *PumpfunCompleteRecord
}

// Kind returns the tag of the populated variant.
func (e *Event) Kind() EventKind {
	switch {
	case e.Trade != nil:
		return KindTrade
	case e.PoolCreated != nil:
		return KindPoolCreated
	case e.PumpfunComplete != nil:
		return KindPumpfunComplete
	}
	return ""
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch {
	case e.Trade != nil:
		return marshalTagged(KindTrade, e.Trade)
	case e.PoolCreated != nil:
		return marshalTagged(KindPoolCreated, e.PoolCreated)
	case e.PumpfunComplete != nil:
		return marshalTagged(KindPumpfunComplete, e.PumpfunComplete)
	}
	return nil, fmt.Errorf("event has no variant set")
}

func marshalTagged(kind EventKind, record any) ([]byte, error) {
	fields, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(struct {
		Kind EventKind `json:"kind"`
	}{kind})
	if err != nil {
		return nil, err
	}
	if string(fields) == "{}" {
		return tag, nil
	}
	// splice {"kind":...} and {fields...} into one object
	out := make([]byte, 0, len(tag)+len(fields))
	out = append(out, tag[:len(tag)-1]...)
	out = append(out, ',')
	out = append(out, fields[1:]...)
	return out, nil
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var tag struct {
		Kind EventKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	*e = Event{}
	switch tag.Kind {
	case KindTrade:
		e.Trade = &TradeRecord{}
		return json.Unmarshal(data, e.Trade)
	case KindPoolCreated:
		e.PoolCreated = &PoolCreatedRecord{}
		return json.Unmarshal(data, e.PoolCreated)
	case KindPumpfunComplete:
		e.PumpfunComplete = &PumpfunCompleteRecord{}
		return json.Unmarshal(data, e.PumpfunComplete)
	}
	return fmt.Errorf("unknown event kind %q", tag.Kind)
}
