package model

// MutationKind names the change a mutation describes.
type MutationKind string

const (
	MutationCreated MutationKind = "created"
	MutationUpdated MutationKind = "updated"
	MutationDeleted MutationKind = "deleted"
)

// Mutation describes a write that was applied to the store, so the same
// description can be replayed onto cached pages.
type Mutation struct {
	Kind    MutationKind           `json:"kind"`
	Listing string                 `json:"listing"`
	ID      string                 `json:"id"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	// Record is the full record after a create.
	Record *Record `json:"record,omitempty"`
}
