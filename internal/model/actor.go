package model

// Roles carried in the access token's "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Actor is the authenticated caller of an operation. It is built per request
// from the access token and passed explicitly into every core operation.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor has administrative rights.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccess reports whether the actor may act on a record owned by userID.
func (a Actor) CanAccess(userID uint64) bool {
	return a.IsAdmin() || (a.UserID != 0 && a.UserID == userID)
}
