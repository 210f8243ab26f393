package authdomain

import "time"

// Identity is a caller whose token has been verified.
type Identity struct {
	// Subject is the stable identifier recorded as a ladder owner.
	Subject   string
	Issuer    string
	Email     string
	ExpiresAt time.Time
}

// IsExpired reports whether the identity's token has lapsed at now.
func (i *Identity) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
