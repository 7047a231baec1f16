package account

// Permission tokens checked for exact membership in a role's permission set.
// Role-permission membership is an explicit bridge table, seeded by migration;
// nothing is inferred from role names and there is no inheritance.
const (
	PermAdminAccess  = "admin_access"
	PermCreateEvents = "create_events"
	PermManageVenues = "manage_venues"
	PermIsVolunteer  = "is_volunteer"
)

// Built-in role names.
const (
	RoleUser      = "user"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// Principal is an account with its resolved permission set, as placed into the
// request context by the authorization gate.
type Principal struct {
	Account     *Account
	Permissions map[string]struct{}
}

// NewPrincipal constructs a principal with preloaded permissions.
func NewPrincipal(acct *Account, perms []Permission) Principal {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p.Key] = struct{}{}
	}
	return Principal{Account: acct, Permissions: set}
}

// HasPermission reports whether the principal holds the exact permission token.
func (p Principal) HasPermission(token string) bool {
	_, ok := p.Permissions[token]
	return ok
}

// PermissionKeys returns the principal's tokens as a slice for responses.
func (p Principal) PermissionKeys() []string {
	keys := make([]string, 0, len(p.Permissions))
	for k := range p.Permissions {
		keys = append(keys, k)
	}
	return keys
}
