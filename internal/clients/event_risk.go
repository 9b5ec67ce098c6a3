package clients

import (
	"context"
	"net/http"
)

// CorporateEvent is one upcoming event with its own risk contribution.
type CorporateEvent struct {
	Type       string `json:"type"`
	RiskFactor int    `json:"risk_factor"` // 0-10
}

type eventRiskWire struct {
	Events []CorporateEvent `json:"events"`
}

// EventRiskClient fetches upcoming corporate events for a ticker.
type EventRiskClient struct {
	ep *endpoint
}

func NewEventRiskClient(cfg Config) *EventRiskClient {
	return &EventRiskClient{ep: newEndpoint("event_risk", cfg)}
}

// FetchEvents calls GET /events/{ticker}. An empty or missing list is not an
// error: the resolver treats it as event risk 0 regardless of how this
// function signals it, but a transport failure is distinguished via err so
// the resolver can tag provenance as fallback instead of absent.
func (c *EventRiskClient) FetchEvents(ctx context.Context, ticker string) ([]CorporateEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.url("/events/"+ticker), nil)
	if err != nil {
		return nil, err
	}
	var wire eventRiskWire
	found, err := c.ep.getJSON(req, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return wire.Events, nil
}

// MaxRiskFactor returns the highest risk factor among events, or 0 if empty.
func MaxRiskFactor(events []CorporateEvent) int {
	max := 0
	for _, e := range events {
		if e.RiskFactor > max {
			max = e.RiskFactor
		}
	}
	return max
}
