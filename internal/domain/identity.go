package domain

// Identity is the single predefined login identity, fixed at process start.
// There is no create or delete path; it is configuration, not user data.
type Identity struct {
	Username     string
	PasswordHash string
}
