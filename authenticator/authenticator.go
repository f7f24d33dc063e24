package authenticator

import (
	"context"
	"errors"
)

// ErrEmailNotVerified is returned when the identity provider did not vouch
// for the email address, or sent none
var ErrEmailNotVerified = errors.New("a verified email address is required")

// Identity is a signed-in person as asserted by the identity provider.
// Email is lower-cased and always verified.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Provider abstracts the login flow of an identity provider
type Provider interface {
	// AuthURL returns where to send the browser to sign in
	AuthURL(state string) string
	// Authenticate redeems the authorization code and returns the verified identity
	Authenticate(ctx context.Context, code string) (*Identity, error)
}
