package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"jobselect/domain"
)

// Credential is what a user presents to sign in.
type Credential interface {
	isCredential()
}

// PasswordCredential is an identifier and secret checked by a PasswordProvider.
// The secret goes to the provider only.
type PasswordCredential struct {
	Email  string
	Secret string
}

// FederatedAssertion carries claims already verified by an external provider.
type FederatedAssertion struct {
	IDToken string
	Email   string
	Name    string
	Photo   string
}

func (PasswordCredential) isCredential() {}
func (FederatedAssertion) isCredential() {}

// VerifiedIdentity is a provider's answer to a password check.
type VerifiedIdentity struct {
	IDToken string
	Email   string
	Name    string
	Photo   string
}

type PasswordProvider interface {
	VerifyPassword(ctx context.Context, email, secret string) (VerifiedIdentity, error)
}

// IdentityBridge trades a credential for a session and stores it.
type IdentityBridge struct {
	api      *API
	store    *SessionStore
	password PasswordProvider
}

// NewIdentityBridge accepts a nil provider when only federated sign-in is used.
func NewIdentityBridge(api *API, store *SessionStore, password PasswordProvider) *IdentityBridge {
	return &IdentityBridge{api: api, store: store, password: password}
}

type loginPayload struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Photo   string `json:"photo,omitempty"`
	IDToken string `json:"idToken,omitempty"`
}

type loginResponse struct {
	Token    string      `json:"token"`
	User     domain.User `json:"user"`
	IssuedAt time.Time   `json:"issuedAt"`
}

// Authenticate verifies cred, forwards only identity claims to the backend
// and replaces the stored session on success. The store is untouched on failure.
func (b *IdentityBridge) Authenticate(ctx context.Context, cred Credential) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "IdentityBridge.Authenticate")
	defer span.End()

	var payload loginPayload
	switch c := cred.(type) {
	case PasswordCredential:
		if b.password == nil {
			return domain.Session{}, domain.NewError(domain.KindProviderUnavailable, "no password provider configured", nil)
		}
		id, err := b.password.VerifyPassword(ctx, c.Email, c.Secret)
		if err != nil {
			return domain.Session{}, err
		}
		payload = loginPayload{Email: id.Email, Name: id.Name, Photo: id.Photo, IDToken: id.IDToken}
	case FederatedAssertion:
		payload = loginPayload{Email: c.Email, Name: c.Name, Photo: c.Photo, IDToken: c.IDToken}
	default:
		return domain.Session{}, domain.NewError(domain.KindInvalidCredential, "unsupported credential", nil)
	}

	r, err := jsonRequest(http.MethodPost, "/auth/login", "", payload)
	if err != nil {
		return domain.Session{}, err
	}
	var resp loginResponse
	if err := b.api.do(ctx, r, &resp); err != nil {
		return domain.Session{}, err
	}
	if resp.Token == "" {
		return domain.Session{}, domain.NewError(domain.KindTokenIssuanceFailed, "login response carried no token", nil)
	}

	session := domain.Session{Token: resp.Token, User: resp.User, IssuedAt: resp.IssuedAt}
	if session.IssuedAt.IsZero() {
		session.IssuedAt = time.Now().UTC()
	}
	b.store.Set(session)
	return session, nil
}

// Logout tells the backend and clears the stored session even if that call fails.
func (b *IdentityBridge) Logout(ctx context.Context) error {
	session, ok := b.store.Get()
	b.store.Clear()
	if !ok {
		return nil
	}
	r, err := jsonRequest(http.MethodPost, "/auth/logout", session.Token, nil)
	if err != nil {
		return err
	}
	return b.api.do(ctx, r, nil)
}

const firebaseSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebasePasswordProvider checks passwords with Firebase Auth's REST API.
type FirebasePasswordProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewFirebasePasswordProvider(apiKey string, logger *zap.Logger) *FirebasePasswordProvider {
	return &FirebasePasswordProvider{
		apiKey:   apiKey,
		endpoint: firebaseSignInURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// WithEndpoint points the provider at another sign-in URL, such as the
// Firebase Auth emulator.
func (p *FirebasePasswordProvider) WithEndpoint(endpoint string) *FirebasePasswordProvider {
	p.endpoint = endpoint
	return p
}

type firebaseSignInResponse struct {
	IDToken        string `json:"idToken"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture"`
}

// VerifyPassword maps every rejection to InvalidCredential so callers cannot
// tell an unknown account from a wrong secret.
func (p *FirebasePasswordProvider) VerifyPassword(ctx context.Context, email, secret string) (VerifiedIdentity, error) {
	if email == "" || secret == "" {
		return VerifiedIdentity{}, domain.NewError(domain.KindInvalidCredential, "email and password are required", nil)
	}

	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          secret,
		"returnSecureToken": true,
	})
	if err != nil {
		return VerifiedIdentity{}, domain.Internal("encode sign-in request", err)
	}

	endpoint := p.endpoint + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return VerifiedIdentity{}, domain.Internal("create sign-in request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("identity provider unreachable", zap.Error(err))
		return VerifiedIdentity{}, domain.NewError(domain.KindProviderUnavailable, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return VerifiedIdentity{}, domain.NewError(domain.KindProviderUnavailable, "identity provider error", nil)
	case resp.StatusCode >= 400:
		return VerifiedIdentity{}, domain.NewError(domain.KindInvalidCredential, "password rejected", nil)
	}

	var out firebaseSignInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return VerifiedIdentity{}, domain.NewError(domain.KindProviderUnavailable, "decode sign-in response", err)
	}
	if out.Email == "" {
		out.Email = email
	}
	return VerifiedIdentity{
		IDToken: out.IDToken,
		Email:   out.Email,
		Name:    out.DisplayName,
		Photo:   out.ProfilePicture,
	}, nil
}
