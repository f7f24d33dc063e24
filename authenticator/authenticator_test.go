package authenticator

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/coreos/go-oidc/v3/oidc/oidctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://login.example.com/"
	testClientID = "tasktime"
	testKeyID    = "test-key"
)

func newTestProvider(t *testing.T) (*OpenIDProvider, *rsa.PrivateKey) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{priv.Public()}}
	return &OpenIDProvider{
		verifier: oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID, SkipExpiryCheck: true}),
	}, priv
}

func sign(priv *rsa.PrivateKey, claims string) string {
	return oidctest.SignIDToken(priv, testKeyID, oidc.RS256, claims)
}

func TestIdentify(t *testing.T) {
	provider, priv := newTestProvider(t)

	token := sign(priv, `{
		"iss": "`+testIssuer+`",
		"aud": "`+testClientID+`",
		"sub": "auth0|123",
		"email": " Jane@Example.com ",
		"email_verified": true,
		"name": "Jane Doe"
	}`)

	identity, err := provider.identify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "auth0|123", Email: "jane@example.com", Name: "Jane Doe"}, identity)
}

func TestIdentify_UnverifiedEmail(t *testing.T) {
	provider, priv := newTestProvider(t)

	for name, claims := range map[string]string{
		"unverified": `{"iss": "` + testIssuer + `", "aud": "` + testClientID + `", "sub": "a", "email": "jane@example.com", "email_verified": false}`,
		"no flag":    `{"iss": "` + testIssuer + `", "aud": "` + testClientID + `", "sub": "a", "email": "jane@example.com"}`,
		"no email":   `{"iss": "` + testIssuer + `", "aud": "` + testClientID + `", "sub": "a", "email_verified": true}`,
	} {
		_, err := provider.identify(context.Background(), sign(priv, claims))
		assert.True(t, errors.Is(err, ErrEmailNotVerified), name)
	}
}

func TestIdentify_RejectsForeignTokens(t *testing.T) {
	provider, priv := newTestProvider(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verified := `"email": "jane@example.com", "email_verified": true, "sub": "a"`
	for name, token := range map[string]string{
		"other audience": sign(priv, `{"iss": "`+testIssuer+`", "aud": "someone-else", `+verified+`}`),
		"other issuer":   sign(priv, `{"iss": "https://evil.example.com/", "aud": "`+testClientID+`", `+verified+`}`),
		"other key":      sign(other, `{"iss": "`+testIssuer+`", "aud": "`+testClientID+`", `+verified+`}`),
		"garbage":        "not-a-jwt",
	} {
		_, err := provider.identify(context.Background(), token)
		assert.Error(t, err, name)
		assert.False(t, errors.Is(err, ErrEmailNotVerified), name)
	}
}

func TestClaimsIdentity_Name(t *testing.T) {
	identity, err := idTokenClaims{Subject: "a", Email: "jane@example.com", EmailVerified: true, Nickname: "jd", Name: "Jane"}.identity()
	require.NoError(t, err)
	assert.Equal(t, "jd", identity.Name)

	identity, err = idTokenClaims{Subject: "a", Email: "jane@example.com", EmailVerified: true}.identity()
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", identity.Name)
}

func TestNewOpenIDProviderRequiresConfig(t *testing.T) {
	_, err := NewOpenIDProvider(context.Background(), OpenIDConfig{})
	assert.ErrorContains(t, err, "domain is required")
	assert.ErrorContains(t, err, "client ID is required")
	assert.ErrorContains(t, err, "callback URL is required")

	_, err = NewOpenIDProvider(context.Background(), OpenIDConfig{Domain: "login.example.com", ClientID: "id", CallbackURL: "http://localhost/callback"})
	assert.EqualError(t, err, "client secret is required")
}
