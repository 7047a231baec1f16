package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// AccountIDKey is the context key used to store the authenticated account's ID (string).
const AccountIDKey Key = "accountID"

// SessionIDKey is the context key used to store the current session ID (string).
const SessionIDKey Key = "sessionID"

// PrincipalKey is the context key used to store the resolved principal
// (account plus permission set) placed by the authorization gate.
const PrincipalKey Key = "principal"
