package session

// Storage keys for the device-local auth state.
const (
	TokenKey = "bookworm_token"
	UserKey  = "bookworm_user"
)
