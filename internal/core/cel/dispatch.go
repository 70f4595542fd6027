package cel

import "context"

// SplitCallerCallee splits one call's ordered events into the caller and
// callee legs. The first distinct uniqueid seen is the caller, the second
// is the callee; events from any later leg are dropped. Relative order is
// preserved within each bucket
func SplitCallerCallee(events []Event) (caller, callee []Event) {
	var callerID, calleeID string
	for _, ev := range events {
		switch {
		case callerID == "" || ev.UniqueID == callerID:
			callerID = ev.UniqueID
			caller = append(caller, ev)
		case calleeID == "" || ev.UniqueID == calleeID:
			calleeID = ev.UniqueID
			callee = append(callee, ev)
		}
	}
	return caller, callee
}

// Dispatcher composes the caller and callee interpretors over one call
type Dispatcher struct {
	caller *Interpretor
	callee *Interpretor
}

// NewDispatcher builds a Dispatcher with both role tables bound to dir
func NewDispatcher(dir DirectoryPort) *Dispatcher {
	return &Dispatcher{
		caller: NewCallerInterpretor(dir),
		callee: NewCalleeInterpretor(dir),
	}
}

// InterpretCall folds one call's events into a finished record: the
// caller leg seeds the record, then the callee leg folds over the same
// evolving record
func (d *Dispatcher) InterpretCall(ctx context.Context, events []Event) (*RawCallLog, error) {
	callerEvents, calleeEvents := SplitCallerCallee(events)

	r, err := d.caller.InterpretAll(ctx, callerEvents, NewRawCallLog())
	if err != nil {
		return nil, err
	}
	return d.callee.InterpretAll(ctx, calleeEvents, r)
}
