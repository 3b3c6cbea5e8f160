package domain

// Identifiable is an entity with an immutable key.
type Identifiable[K comparable] interface {
	GetID() K
	SetID(id K)
}

// Stamped is an entity carrying an optimistic concurrency stamp.
type Stamped interface {
	GetConcurrencyStamp() string
	SetConcurrencyStamp(stamp string)
}

// Document is a top-level entity persisted by the concurrency-stamped store.
type Document[K comparable] interface {
	Identifiable[K]
	Stamped
}

// HasClaims is implemented by entities embedding a claim collection.
type HasClaims interface {
	AddClaim(c Claim) bool
	RemoveClaim(c Claim) bool
	ReplaceClaim(old, replacement Claim) bool
}

// HasRoles is implemented by entities embedding role memberships.
type HasRoles[K comparable] interface {
	AddRole(roleID K) bool
	RemoveRole(roleID K) bool
	IsInRole(roleID K) bool
}

// HasLogins is implemented by entities embedding external logins.
type HasLogins interface {
	AddLogin(l UserLogin) bool
	RemoveLogin(loginProvider, providerKey string) bool
	FindLogin(loginProvider, providerKey string) (UserLogin, bool)
}

// HasTokens is implemented by entities embedding tokens.
type HasTokens interface {
	AddToken(t UserToken) bool
	FindToken(loginProvider, name string) (UserToken, bool)
	SetTokenValue(loginProvider, name, value string) bool
	RemoveToken(loginProvider, name string) bool
}

var (
	_ Document[string] = (*User[string])(nil)
	_ Document[string] = (*Role[string])(nil)
	_ HasClaims        = (*User[string])(nil)
	_ HasRoles[string] = (*User[string])(nil)
	_ HasLogins        = (*User[string])(nil)
	_ HasTokens        = (*User[string])(nil)
)
