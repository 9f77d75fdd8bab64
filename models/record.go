package models

import "time"

// ResultRecord is one element of the result document.
//
// TechnologyStack keeps the sentinel strings for non-success outcomes;
// Outcome is the discriminator consumers should switch on.
type ResultRecord struct {
	Domain          string      `json:"domain"`
	TechnologyStack []string    `json:"technology_stack"`
	Outcome         OutcomeKind `json:"outcome,omitempty"`
	Message         string      `json:"message,omitempty"`
	RecordedAt      *time.Time  `json:"recorded_at,omitempty"`
}

// NewRecord builds the record for one domain attempt.
func NewRecord(domain string, o Outcome, at time.Time) ResultRecord {
	at = at.UTC()
	return ResultRecord{
		Domain:          domain,
		TechnologyStack: o.StackLines(),
		Outcome:         o.Kind,
		Message:         o.Message,
		RecordedAt:      &at,
	}
}
