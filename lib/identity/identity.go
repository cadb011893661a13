// Package identity maps caller-supplied credential shorthands to the
// canonical identifier/secret pairs the portal expects.
package identity

import (
	"alfagate-backend/lib/textutil"
)

// Credentials is a canonical identifier/secret pair for the portal.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Table is the alias mapping, supplied from configuration. The two
// halves resolve independently, matching how operators hand out
// shorthands for accounts and for their secrets.
type Table struct {
	Usernames map[string]string `json:"usernames"`
	Passwords map[string]string `json:"passwords"`
}

type Resolver struct {
	table Table
}

func NewResolver(table Table) Resolver {
	return Resolver{table: table}
}

// Resolve maps each half of the pair through the alias table. Username
// lookups are normalized (case and whitespace insensitive); secrets are
// matched exactly. A key the table does not know passes through
// unchanged; there is no default identity to fall back to.
func (r Resolver) Resolve(in Credentials) Credentials {
	out := in
	if v, ok := r.table.Usernames[textutil.NormalizeName(in.Username)]; ok {
		out.Username = v
	}
	if v, ok := r.table.Passwords[in.Password]; ok {
		out.Password = v
	}
	return out
}
