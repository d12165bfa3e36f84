package auth

// Identity is the resolved caller of an authenticated request. Handlers pass
// it explicitly to the gateway; nothing reads it out of ambient state.
type Identity struct {
	UserID    string
	SessionID string
}
