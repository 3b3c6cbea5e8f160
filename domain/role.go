package domain

// Role is a named group users can be members of.
type Role[K comparable] struct {
	ID               K      `bson:"_id"               json:"id"`
	Name             string `bson:"name"              json:"name"`
	NormalizedName   string `bson:"normalized_name"   json:"normalized_name"`
	ConcurrencyStamp string `bson:"concurrency_stamp" json:"concurrency_stamp"`
}

// NewRole returns a role with the given display name.
func NewRole[K comparable](name string) *Role[K] {
	return &Role[K]{Name: name}
}

func (r *Role[K]) GetID() K { return r.ID }
func (r *Role[K]) SetID(id K) { r.ID = id }
func (r *Role[K]) GetConcurrencyStamp() string { return r.ConcurrencyStamp }
func (r *Role[K]) SetConcurrencyStamp(s string) { r.ConcurrencyStamp = s }
