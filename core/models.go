package core

// Role is the access level the backend assigns to an account.
type Role int

const (
	RoleReader Role = iota
	RoleAuthor
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleAuthor:
		return "author"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// Identity represents the current session
//
// The zero value is the unauthenticated baseline: an empty Token means
// logged out, and Role and UserID are nil in that state. The four
// fields always transition together.
type Identity struct {
	Token       string `json:"token"`
	Role        *Role  `json:"role,omitempty"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	UserID      *int64 `json:"userId,omitempty"`
}

// Authenticated reports whether the identity holds a session token.
func (i Identity) Authenticated() bool {
	return i.Token != ""
}

// Clone returns a copy that shares no pointers with the receiver, so
// callers can never mutate session state through a returned Identity.
func (i Identity) Clone() Identity {
	out := i
	if i.Role != nil {
		r := *i.Role
		out.Role = &r
	}
	if i.UserID != nil {
		id := *i.UserID
		out.UserID = &id
	}
	return out
}

// Equal reports whether two identities hold the same values.
func (i Identity) Equal(other Identity) bool {
	if i.Token != other.Token || i.DisplayName != other.DisplayName || i.AvatarURL != other.AvatarURL {
		return false
	}
	if (i.Role == nil) != (other.Role == nil) || (i.Role != nil && *i.Role != *other.Role) {
		return false
	}
	if (i.UserID == nil) != (other.UserID == nil) || (i.UserID != nil && *i.UserID != *other.UserID) {
		return false
	}
	return true
}

// UserProfile is the account data the backend returns alongside a token.
type UserProfile struct {
	ID          int64
	Role        Role
	DisplayName string
	AvatarURL   string
}

// Credentials is the result of a successful login or registration.
type Credentials struct {
	Token string
	User  UserProfile
}

// ProfileUpdate is a partial edit of the display fields. A nil field is
// left untouched; Token, Role and UserID can never be changed this way.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
}

// RegisterInput contains the data needed to create a new account.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}
