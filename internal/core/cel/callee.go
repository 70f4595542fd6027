package cel

import "context"

// NewCalleeInterpretor builds the handler table for the answering leg.
// The participant resolver is bound for the destination role
func NewCalleeInterpretor(dir DirectoryPort) *Interpretor {
	c := calleeHandlers{dir: dir}
	return NewInterpretor(map[EventType]Handler{
		EventTypeChanStart: c.chanStart,
	})
}

type calleeHandlers struct {
	dir DirectoryPort
}

// chanStart records the answering line identity and merges the
// destination participant's tags when the directory knows the line
func (c calleeHandlers) chanStart(ctx context.Context, ev Event, r *RawCallLog) (*RawCallLog, error) {
	if identity := LineIdentity(ev.ChanName); identity != "" {
		r.DestinationLineIdentity = identity
	}

	participant, err := FindParticipant(ctx, c.dir, ev.ChanName, RoleDestination)
	if err != nil {
		return nil, err
	}
	if participant != nil {
		r.Tags = append(r.Tags, participant.Tags...)
	}
	return r, nil
}
