package domain

import "slices"

// The methods below edit the embedded collections of a loaded user in memory.
// Each reports whether the collection changed so callers can skip the write.

// AddClaim appends c unless a claim with the same type and value exists.
func (u *User[K]) AddClaim(c Claim) bool {
	if slices.Contains(u.Claims, c) {
		return false
	}
	u.Claims = append(u.Claims, c)
	return true
}

// RemoveClaim removes every claim matching the type and value of c.
func (u *User[K]) RemoveClaim(c Claim) bool {
	n := len(u.Claims)
	u.Claims = slices.DeleteFunc(u.Claims, func(x Claim) bool { return x == c })
	return len(u.Claims) != n
}

// ReplaceClaim overwrites every claim matching old with replacement.
func (u *User[K]) ReplaceClaim(old, replacement Claim) bool {
	found := false
	for i := range u.Claims {
		if u.Claims[i] == old {
			u.Claims[i] = replacement
			found = true
		}
	}
	return found
}

// AddRole records membership in roleID.
func (u *User[K]) AddRole(roleID K) bool {
	if slices.Contains(u.Roles, roleID) {
		return false
	}
	u.Roles = append(u.Roles, roleID)
	return true
}

// RemoveRole drops membership in roleID.
func (u *User[K]) RemoveRole(roleID K) bool {
	n := len(u.Roles)
	u.Roles = slices.DeleteFunc(u.Roles, func(x K) bool { return x == roleID })
	return len(u.Roles) != n
}

func (u *User[K]) IsInRole(roleID K) bool {
	return slices.Contains(u.Roles, roleID)
}

// AddLogin appends l unless a login for the same provider and key exists.
func (u *User[K]) AddLogin(l UserLogin) bool {
	if _, ok := u.FindLogin(l.LoginProvider, l.ProviderKey); ok {
		return false
	}
	u.Logins = append(u.Logins, l)
	return true
}

func (u *User[K]) RemoveLogin(loginProvider, providerKey string) bool {
	n := len(u.Logins)
	u.Logins = slices.DeleteFunc(u.Logins, func(x UserLogin) bool {
		return x.LoginProvider == loginProvider && x.ProviderKey == providerKey
	})
	return len(u.Logins) != n
}

func (u *User[K]) FindLogin(loginProvider, providerKey string) (UserLogin, bool) {
	i := slices.IndexFunc(u.Logins, func(x UserLogin) bool {
		return x.LoginProvider == loginProvider && x.ProviderKey == providerKey
	})
	if i < 0 {
		return UserLogin{}, false
	}
	return u.Logins[i], true
}

// AddToken appends t unless a token with the same provider and name exists.
func (u *User[K]) AddToken(t UserToken) bool {
	if _, ok := u.FindToken(t.LoginProvider, t.Name); ok {
		return false
	}
	u.Tokens = append(u.Tokens, t)
	return true
}

func (u *User[K]) FindToken(loginProvider, name string) (UserToken, bool) {
	i := u.tokenIndex(loginProvider, name)
	if i < 0 {
		return UserToken{}, false
	}
	return u.Tokens[i], true
}

// SetTokenValue updates an existing token in place. It reports false when no
// token with that provider and name exists; adding one is the caller's call.
func (u *User[K]) SetTokenValue(loginProvider, name, value string) bool {
	i := u.tokenIndex(loginProvider, name)
	if i < 0 {
		return false
	}
	u.Tokens[i].Value = value
	return true
}

func (u *User[K]) RemoveToken(loginProvider, name string) bool {
	n := len(u.Tokens)
	u.Tokens = slices.DeleteFunc(u.Tokens, func(x UserToken) bool {
		return x.LoginProvider == loginProvider && x.Name == name
	})
	return len(u.Tokens) != n
}

func (u *User[K]) tokenIndex(loginProvider, name string) int {
	return slices.IndexFunc(u.Tokens, func(x UserToken) bool {
		return x.LoginProvider == loginProvider && x.Name == name
	})
}

// ClearCollections empties all embedded collections.
func (u *User[K]) ClearCollections() {
	u.Claims = []Claim{}
	u.Roles = []K{}
	u.Logins = []UserLogin{}
	u.Tokens = []UserToken{}
}

// EnsureCollections replaces nil embedded collections with empty ones so they
// are stored as empty arrays.
func (u *User[K]) EnsureCollections() {
	if u.Claims == nil {
		u.Claims = []Claim{}
	}
	if u.Roles == nil {
		u.Roles = []K{}
	}
	if u.Logins == nil {
		u.Logins = []UserLogin{}
	}
	if u.Tokens == nil {
		u.Tokens = []UserToken{}
	}
}
