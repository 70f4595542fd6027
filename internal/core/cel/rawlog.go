package cel

import "time"

// Direction of a call as seen from the PBX
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// RawCallLog is the accumulator threaded through the fold.
// It is mutable while interpreting one call and must not be touched
// afterwards; zero values mean the field was never set
type RawCallLog struct {
	Date                    time.Time
	DateAnswer              time.Time
	DateEnd                 time.Time
	SourceName              string
	SourceExten             string
	SourceLineIdentity      string
	DestinationName         string
	DestinationExten        string
	DestinationLineIdentity string
	Direction               string
	UserField               string
	Tags                    []string
}

// NewRawCallLog returns an empty accumulator for one call
func NewRawCallLog() *RawCallLog { return &RawCallLog{} }

// CDR is the finished call detail record produced from a completed fold
type CDR struct {
	Date                    time.Time
	DateAnswer              time.Time
	DateEnd                 time.Time
	SourceName              string
	SourceExten             string
	SourceLineIdentity      string
	DestinationName         string
	DestinationExten        string
	DestinationLineIdentity string
	Direction               string
	UserField               string
	Tags                    []string
	Duration                time.Duration
	Answered                bool
}

// ToCDR freezes the accumulator into a CDR.
// Duration counts the answered portion of the call and is zero for
// unanswered calls
func (r *RawCallLog) ToCDR() CDR {
	answered := !r.DateAnswer.IsZero()
	var duration time.Duration
	if answered && !r.DateEnd.IsZero() {
		duration = r.DateEnd.Sub(r.DateAnswer)
	}
	return CDR{
		Date:                    r.Date,
		DateAnswer:              r.DateAnswer,
		DateEnd:                 r.DateEnd,
		SourceName:              r.SourceName,
		SourceExten:             r.SourceExten,
		SourceLineIdentity:      r.SourceLineIdentity,
		DestinationName:         r.DestinationName,
		DestinationExten:        r.DestinationExten,
		DestinationLineIdentity: r.DestinationLineIdentity,
		Direction:               r.Direction,
		UserField:               r.UserField,
		Tags:                    append([]string(nil), r.Tags...),
		Duration:                duration,
		Answered:                answered,
	}
}
