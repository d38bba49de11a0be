// Package session defines the plain session struct the auth orchestrator
// produces and the external session-persistence collaborator stores.
package session

// ID is the (list_id, element_id) pair derived from an access token.
type ID struct {
	ListID    string
	ElementID string
}

// Session is the client's working session state: enough to authenticate
// further requests without re-running the login protocol.
type Session struct {
	BaseURL     string
	AccessToken string
	UserID      string
	SessionID   *ID
}
