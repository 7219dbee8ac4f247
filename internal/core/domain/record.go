package domain

// NoID marks "no identity to exclude" in uniqueness lookups. Storage engines
// assign identities starting at 1.
const NoID int64 = 0

// Scope selects whether soft-deleted records take part in a lookup.
type Scope int

const (
	// LiveOnly hides records whose DeletedAt is set.
	LiveOnly Scope = iota
	// IncludeDeleted also matches soft-deleted records.
	IncludeDeleted
)

func (s Scope) String() string {
	if s == IncludeDeleted {
		return "include_deleted"
	}
	return "live_only"
}

// Projection selects which employee fields a lookup returns.
type Projection int

const (
	// DefaultFields omits the credential hash.
	DefaultFields Projection = iota
	// WithCredential also loads the credential hash.
	WithCredential
)
