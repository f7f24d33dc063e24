package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OpenIDConfig holds OpenID Connect configuration
type OpenIDConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (c OpenIDConfig) validate() error {
	var errs []error
	if c.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if c.ClientID == "" {
		errs = append(errs, errors.New("client ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if c.CallbackURL == "" {
		errs = append(errs, errors.New("callback URL is required"))
	}
	return errors.Join(errs...)
}

// OpenIDProvider signs users in with OpenID Connect and maps the ID token to an Identity
type OpenIDProvider struct {
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// NewOpenIDProvider discovers the provider at https://<domain>/ and prepares the verifier
func NewOpenIDProvider(ctx context.Context, cfg OpenIDConfig) (*OpenIDProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, "https://"+cfg.Domain+"/")
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", cfg.Domain, err)
	}

	return &OpenIDProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     provider.Endpoint(),
			// email is needed to match the login to a user
			Scopes: []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthURL returns the authorization URL carrying state
func (p *OpenIDProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Authenticate exchanges the code for tokens and verifies the ID token
func (p *OpenIDProvider) Authenticate(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no id_token in token response")
	}

	return p.identify(ctx, rawIDToken)
}

// idTokenClaims are the ID token claims used to identify a user
type idTokenClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Nickname      string `json:"nickname"`
	Name          string `json:"name"`
}

func (p *OpenIDProvider) identify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}

	return claims.identity()
}

func (c idTokenClaims) identity() (*Identity, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" || !c.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	identity := &Identity{Subject: c.Subject, Email: email}
	for _, name := range []string{c.Nickname, c.Name, email} {
		if name = strings.TrimSpace(name); name != "" {
			identity.Name = name
			break
		}
	}
	return identity, nil
}
