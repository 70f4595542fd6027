package cel

import "context"

// NewCallerInterpretor builds the handler table for the originating leg.
// The participant resolver is bound for the source role
func NewCallerInterpretor(dir DirectoryPort) *Interpretor {
	c := callerHandlers{dir: dir}
	return NewInterpretor(map[EventType]Handler{
		EventTypeChanStart:   c.chanStart,
		EventTypeAppStart:    c.appStart,
		EventTypeAnswer:      c.answer,
		EventTypeBridgeStart: c.bridgeStartOrEnter,
		EventTypeBridgeEnter: c.bridgeStartOrEnter,
		EventTypeIncall:      c.incall,
		EventTypeOutcall:     c.outcall,
		EventTypeFromS:       c.fromS,
		EventTypeHangup:      c.hangup,
	})
}

type callerHandlers struct {
	dir DirectoryPort
}

// chanStart seeds the record from the very first event of the leg.
// An "s" exten is the dialplan's generic start extension and carries no
// meaningful destination, so it maps to the empty string
func (c callerHandlers) chanStart(ctx context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	r.Date = ev.EventTime
	r.SourceName = ev.CIDName
	r.SourceExten = ev.CIDNum
	if ev.Exten == "s" {
		r.DestinationExten = ""
	} else {
		r.DestinationExten = ev.Exten
	}

	participant, err := FindParticipant(ctx, c.dir, ev.ChanName, RoleSource)
	if err != nil {
		return nil, err
	}
	if participant != nil {
		r.SourceLineIdentity = LineIdentity(ev.ChanName)
		r.Tags = append(r.Tags, participant.Tags...)
	}
	return r, nil
}

// appStart carries the userfield. Some channel drivers only populate the
// real caller identity here, so a fully populated caller id overwrites
// the chan_start one; a partial caller id is ignored
func (c callerHandlers) appStart(_ context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	r.UserField = ev.UserField
	if ev.CIDName != "" && ev.CIDNum != "" {
		r.SourceName = ev.CIDName
		r.SourceExten = ev.CIDNum
	}
	return r, nil
}

// answer fills destination_exten once; the first answer wins
func (c callerHandlers) answer(_ context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	if r.DestinationExten == "" {
		r.DestinationExten = ev.CIDName
	}
	return r, nil
}

// bridgeStartOrEnter sets the caller identity on the first bridge event
// and refreshes date_answer on every bridge event
func (c callerHandlers) bridgeStartOrEnter(_ context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	if r.SourceName == "" {
		r.SourceName = ev.CIDName
		r.SourceExten = ev.CIDNum
	}
	r.DateAnswer = ev.EventTime
	return r, nil
}

func (c callerHandlers) incall(_ context.Context, _ Event, r *RawCallLog) (*RawCallLog, error) {
	r.Direction = DirectionInbound
	return r, nil
}

func (c callerHandlers) outcall(_ context.Context, _ Event, r *RawCallLog) (*RawCallLog, error) {
	r.Direction = DirectionOutbound
	return r, nil
}

// fromS is the authoritative resolution of an earlier ambiguous "s" exten
func (c callerHandlers) fromS(_ context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	r.DestinationExten = ev.Exten
	return r, nil
}

// hangup stamps the end of the leg; the last hangup wins
func (c callerHandlers) hangup(_ context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	r.DateEnd = ev.EventTime
	return r, nil
}
