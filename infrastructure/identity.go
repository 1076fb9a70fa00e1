package infrastructure

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"jobselect/config"
	"jobselect/domain"
)

// IdentityVerifier sends an ID token to the verifier for its issuer: Google
// sign-in tokens to GoogleVerifier, Firebase password sign-in tokens to
// FirebaseVerifier.
type IdentityVerifier struct {
	google   *GoogleVerifier
	firebase *FirebaseVerifier
}

func NewIdentityVerifier(google *GoogleVerifier, firebase *FirebaseVerifier) *IdentityVerifier {
	return &IdentityVerifier{google: google, firebase: firebase}
}

// Enabled reports whether any issuer is accepted.
func (v *IdentityVerifier) Enabled() bool {
	return v != nil && (v.google.Enabled() || v.firebase.Enabled())
}

func (v *IdentityVerifier) Verify(ctx context.Context, rawToken string) (domain.IdentityClaims, error) {
	if rawToken == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "id token is required", nil)
	}
	var unverified jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &unverified); err != nil {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "malformed id token", err)
	}

	switch iss := unverified.Issuer; {
	case strings.HasPrefix(iss, firebaseIssuerPrefix) && v.firebase.Enabled():
		return v.firebase.Verify(ctx, rawToken)
	case (iss == "accounts.google.com" || iss == "https://accounts.google.com") && v.google.Enabled():
		return v.google.Verify(ctx, rawToken)
	}
	return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "id token issuer is not accepted", nil)
}

// GoogleVerifier turns a Google ID token into verified identity claims.
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(cfg *config.Config) *GoogleVerifier {
	return &GoogleVerifier{audience: cfg.GoogleClientID, validate: idtoken.Validate}
}

// Enabled reports whether ID tokens are required at login.
func (v *GoogleVerifier) Enabled() bool {
	return v != nil && v.audience != ""
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (domain.IdentityClaims, error) {
	if rawToken == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "id token is required", nil)
	}
	payload, err := v.validate(ctx, rawToken, v.audience)
	if err != nil {
		if isNetworkError(err) {
			return domain.IdentityClaims{}, domain.NewError(domain.KindProviderUnavailable, "fetch google certificates", err)
		}
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "verify id token", err)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "email is not verified", nil)
	}

	claims := domain.IdentityClaims{
		Email: stringClaim(payload.Claims, "email"),
		Name:  stringClaim(payload.Claims, "name"),
		Photo: stringClaim(payload.Claims, "picture"),
	}
	return claims.Normalize()
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// GoogleOAuth runs the server-side authorization code flow and hands the
// resulting ID token to the verifier.
type GoogleOAuth struct {
	config   *oauth2.Config
	verifier *GoogleVerifier
}

// NewGoogleOAuth returns nil when the code flow is not configured.
func NewGoogleOAuth(cfg *config.Config, verifier *GoogleVerifier) *GoogleOAuth {
	if !cfg.GoogleOAuthEnabled() {
		return nil
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifier: verifier,
	}
}

func (o *GoogleOAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for verified identity claims.
func (o *GoogleOAuth) Exchange(ctx context.Context, code string) (domain.IdentityClaims, error) {
	if code == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "authorization code is required", nil)
	}
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
			return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "exchange authorization code", err)
		}
		return domain.IdentityClaims{}, domain.NewError(domain.KindProviderUnavailable, "exchange authorization code", err)
	}
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "token response has no id_token", nil)
	}
	return o.verifier.Verify(ctx, rawID)
}
