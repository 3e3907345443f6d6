package onepager

// Principal identifies the owner of an editing session: an authenticated
// user or an anonymous guest.
type Principal struct {
	UserID  string
	GuestID string
}

// IsGuest reports whether the principal is unauthenticated.
func (p Principal) IsGuest() bool {
	return p.UserID == ""
}

// Key returns a registry key unique across users and guests.
func (p Principal) Key() string {
	if p.IsGuest() {
		return "guest:" + p.GuestID
	}
	return "user:" + p.UserID
}
