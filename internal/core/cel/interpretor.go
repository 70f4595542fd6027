package cel

import "context"

// Handler applies one event to the accumulator and returns it.
// Handlers may mutate the record in place; returning an error aborts
// the fold (only directory failures do this in practice)
type Handler func(ctx context.Context, ev Event, r *RawCallLog) (*RawCallLog, error)

// Interpretor is the fold engine parameterized by a role specific
// handler table. Event types without a handler pass the record through
// unchanged, so vocabularies can grow without breaking interpretation
type Interpretor struct {
	handlers map[EventType]Handler
}

// NewInterpretor builds an Interpretor over a handler table
func NewInterpretor(handlers map[EventType]Handler) *Interpretor {
	return &Interpretor{handlers: handlers}
}

// InterpretAll is a strict left fold of events over the record
func (i *Interpretor) InterpretAll(ctx context.Context, events []Event, r *RawCallLog) (*RawCallLog, error) {
	var err error
	for _, ev := range events {
		r, err = i.InterpretOne(ctx, ev, r)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// InterpretOne dispatches one event to its handler, or returns the
// record unchanged when the event type is unknown
func (i *Interpretor) InterpretOne(ctx context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	h, ok := i.handlers[ev.EventType]
	if !ok {
		return r, nil
	}
	return h(ctx, ev, r)
}
