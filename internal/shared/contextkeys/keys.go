package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "consultancy-portal context key " + string(c)
}

const (
	// RequestIDKey carries the X-Request-ID of the current HTTP request.
	RequestIDKey = contextKey("requestID")
	// UserIDKey carries the authenticated user's ID (student or admin).
	UserIDKey = contextKey("userID")
	// UserEmailKey carries the authenticated user's email.
	UserEmailKey = contextKey("userEmail")
	// UserRoleKey carries the authenticated user's role.
	UserRoleKey = contextKey("userRole")
	// ClaimsKey carries the validated token claims.
	ClaimsKey = contextKey("claims")
	// SessionIDKey carries the pagination session the request belongs to.
	SessionIDKey = contextKey("sessionID")
	// ComponentKey names the component emitting a log line.
	ComponentKey = contextKey("component")
	// OperationKey names the operation being performed.
	OperationKey = contextKey("operation")
)
