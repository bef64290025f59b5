// Package uid provides ID generators behind small interfaces so callers can
// swap deterministic fakes in tests.
package uid

// StringID generates string identifiers (UUIDs, object IDs).
type StringID interface {
	Generate() string
}

// NumberID generates int64 identifiers (snowflakes).
type NumberID interface {
	Generate() int64
}
