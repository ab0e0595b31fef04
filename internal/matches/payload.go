package matches

import "time"

// Payload is the envelope published by the live engine and consumed by the sink.
type Payload struct {
	Version     int         `json:"version"`
	Profile     string      `json:"profile"`
	PublishedAt time.Time   `json:"published_at"`
	Opportunity Opportunity `json:"opportunity"`
}

const payloadVersion = 1

// NewPayload wraps an opportunity for publishing.
func NewPayload(profile string, opp Opportunity, at time.Time) Payload {
	return Payload{
		Version:     payloadVersion,
		Profile:     profile,
		PublishedAt: at.UTC(),
		Opportunity: opp,
	}
}
