// Package domain holds the cdr module wire types and ports
package domain

import "time"

// ListInput carries the query surface of the call log list endpoint
// timestamps are RFC 3339 strings so validation errors surface as 400s
type ListInput struct {
	From      string `json:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Until     string `json:"until" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Order     string `json:"order" validate:"omitempty,oneof=start answer end source_name source_extension destination_name destination_extension direction duration answered"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=1000"`
	Offset    int    `json:"offset" validate:"min=0"`
	Search    string `json:"search" validate:"omitempty,max=128"`
}

// CDR is the wire shape of one call detail record
// Duration is in whole seconds and stays zero for unanswered calls
type CDR struct {
	ID                   string     `json:"id"`
	Start                time.Time  `json:"start"`
	Answer               *time.Time `json:"answer,omitempty"`
	End                  *time.Time `json:"end,omitempty"`
	SourceName           string     `json:"source_name"`
	SourceExtension      string     `json:"source_extension"`
	DestinationName      string     `json:"destination_name"`
	DestinationExtension string     `json:"destination_extension"`
	Direction            string     `json:"direction"`
	Duration             int64      `json:"duration"`
	Answered             bool       `json:"answered"`
	Tags                 []string   `json:"tags"`
}
