package domain

import "time"

// User is the identity document. Claims, role memberships, external logins and
// tokens are embedded in the document rather than stored as separate rows.
type User[K comparable] struct {
	ID                   K          `bson:"_id"                     json:"id"`
	UserName             string     `bson:"user_name"               json:"user_name"`
	NormalizedUserName   string     `bson:"normalized_user_name"    json:"normalized_user_name"`
	Email                string     `bson:"email,omitempty"         json:"email,omitempty"`
	NormalizedEmail      string     `bson:"normalized_email,omitempty" json:"normalized_email,omitempty"`
	EmailConfirmed       bool       `bson:"email_confirmed"         json:"email_confirmed"`
	PasswordHash         string     `bson:"password_hash,omitempty" json:"-"`
	SecurityStamp        string     `bson:"security_stamp"          json:"-"`
	ConcurrencyStamp     string     `bson:"concurrency_stamp"       json:"concurrency_stamp"`
	PhoneNumber          string     `bson:"phone_number,omitempty"  json:"phone_number,omitempty"`
	PhoneNumberConfirmed bool       `bson:"phone_number_confirmed"  json:"phone_number_confirmed"`
	TwoFactorEnabled     bool       `bson:"two_factor_enabled"      json:"two_factor_enabled"`
	LockoutEnd           *time.Time `bson:"lockout_end,omitempty"   json:"lockout_end,omitempty"`
	LockoutEnabled       bool       `bson:"lockout_enabled"         json:"lockout_enabled"`
	AccessFailedCount    int        `bson:"access_failed_count"     json:"access_failed_count"`

	Claims []Claim     `bson:"claims" json:"claims"`
	Roles  []K         `bson:"roles"  json:"roles"`
	Logins []UserLogin `bson:"logins" json:"logins"`
	Tokens []UserToken `bson:"tokens" json:"tokens"`
}

// NewUser returns a user with empty embedded collections.
func NewUser[K comparable](userName string) *User[K] {
	return &User[K]{
		UserName: userName,
		Claims:   []Claim{},
		Roles:    []K{},
		Logins:   []UserLogin{},
		Tokens:   []UserToken{},
	}
}

// Claim is a type/value pair asserted about a user.
type Claim struct {
	Type  string `bson:"type"  json:"type"`
	Value string `bson:"value" json:"value"`
}

// UserLogin links a user to an external login provider.
type UserLogin struct {
	LoginProvider       string `bson:"login_provider"         json:"login_provider"`
	ProviderKey         string `bson:"provider_key"           json:"provider_key"`
	ProviderDisplayName string `bson:"provider_display_name"  json:"provider_display_name,omitempty"`
}

// UserToken is an authentication token stored for a user, keyed by provider and name.
type UserToken struct {
	LoginProvider string `bson:"login_provider" json:"login_provider"`
	Name          string `bson:"name"           json:"name"`
	Value         string `bson:"value"          json:"value"`
}

// UserRole is the association between a user and a role. It is never stored on
// its own; it is projected from the user's embedded role list.
type UserRole[K comparable] struct {
	UserID K `bson:"user_id" json:"user_id"`
	RoleID K `bson:"role_id" json:"role_id"`
}

// UserLoginOwner is a login entry together with the id of the user owning it.
type UserLoginOwner[K comparable] struct {
	UserLogin
	UserID K `json:"user_id"`
}

func (u *User[K]) GetID() K { return u.ID }
func (u *User[K]) SetID(id K) { u.ID = id }
func (u *User[K]) GetConcurrencyStamp() string { return u.ConcurrencyStamp }
func (u *User[K]) SetConcurrencyStamp(s string) { u.ConcurrencyStamp = s }
