// Package fallback defines the provenance tags (C8) that record, per input,
// whether a value came from a live source or a substitution, as plain
// string constants rather than a class hierarchy. It holds no substitution
// table: the substitute values themselves are chosen in the resolver's
// fetch functions, and the clients do not consult this package.
package fallback

// VolatilityTag labels which tier a volatility figure ultimately came from.
type VolatilityTag string

const (
	VolatilityLive       VolatilityTag = "live"
	VolatilityLiveMarket VolatilityTag = "live_market"
	VolatilityFallback   VolatilityTag = "fallback"
)

// EventTag labels how an event-risk figure was derived.
type EventTag string

const (
	EventLive     EventTag = "live"
	EventAbsent   EventTag = "absent"
	EventFallback EventTag = "fallback"
)

// BaseTag labels how the base borrow rate was derived.
type BaseTag string

const (
	BaseLive     BaseTag = "live"
	BaseFallback BaseTag = "fallback"
)

// Provenance records, per resolved rate, where each of the three inputs came
// from. It is a required field of every audit record (§4.8).
type Provenance struct {
	Base       BaseTag       `json:"base"`
	Volatility VolatilityTag `json:"volatility"`
	Event      EventTag      `json:"event"`
}
