// Package access decides whether a caller-asserted email belongs to an
// administrator. The email is trusted as given; see internal/auth for the
// optional token check that binds it to a verified identity.
package access

import "strings"

type Gate struct {
	admins []string
}

// NewGate returns a gate for the configured admin email and any extra
// admin addresses. Empty entries are ignored, so a gate built without a
// configured admin denies everyone.
func NewGate(adminEmail string, extra ...string) *Gate {
	g := &Gate{}
	for _, e := range append([]string{adminEmail}, extra...) {
		if e = normalize(e); e != "" {
			g.admins = append(g.admins, e)
		}
	}
	return g
}

// IsAdmin compares case-insensitively.
func (g *Gate) IsAdmin(email string) bool {
	email = normalize(email)
	if email == "" {
		return false
	}
	for _, a := range g.admins {
		if a == email {
			return true
		}
	}
	return false
}

// Configured reports whether any admin address is set.
func (g *Gate) Configured() bool {
	return len(g.admins) > 0
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
