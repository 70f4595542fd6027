// Package cel interprets Channel Event Log entries into call logs.
// Everything here is pure except the directory lookups behind DirectoryPort
package cel

import "time"

// EventType is the CEL eventtype literal written by the telephony engine
type EventType string

// Known event types. Anything else is a no-op for the fold
const (
	EventTypeChanStart   EventType = "CHAN_START"
	EventTypeAppStart    EventType = "APP_START"
	EventTypeAnswer      EventType = "ANSWER"
	EventTypeBridgeStart EventType = "BRIDGE_START"
	EventTypeBridgeEnter EventType = "BRIDGE_ENTER"
	EventTypeIncall      EventType = "XIVO_INCALL"
	EventTypeOutcall     EventType = "XIVO_OUTCALL"
	EventTypeFromS       EventType = "XIVO_FROM_S"
	EventTypeHangup      EventType = "HANGUP"
	EventTypeLinkedIDEnd EventType = "LINKEDID_END"
)

// Event is one immutable CEL entry, already grouped by linkedid upstream.
// ID is the opaque persistence id of the raw row
type Event struct {
	ID        int64
	EventType EventType
	EventTime time.Time
	UniqueID  string
	LinkedID  string
	ChanName  string
	CIDName   string
	CIDNum    string
	Exten     string
	UserField string
}
