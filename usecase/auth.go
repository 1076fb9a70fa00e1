package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"jobselect/domain"
)

var tracer = otel.Tracer("jobselect/usecase")

type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, id, name, photo string) error
}

type TokenIssuer interface {
	Issue(user domain.User) (string, time.Time, error)
	Verify(token string) (domain.TokenClaims, error)
}

type IdentityVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, rawToken string) (domain.IdentityClaims, error)
}

type CodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.IdentityClaims, error)
}

// LoginInput is an identity assertion. IDToken is required unless unverified
// assertions are allowed.
type LoginInput struct {
	Email   string
	Name    string
	Photo   string
	IDToken string
}

// AuthService is the server half of the identity bridge: it resolves verified
// claims to a User and mints a session token for it.
type AuthService struct {
	users           UserStore
	tokens          TokenIssuer
	verifier        IdentityVerifier
	oauth           CodeExchanger
	allowUnverified bool
	logger          *zap.Logger
}

// NewAuthService takes a nil verifier or exchanger to mean "not configured".
// allowUnverified lets Login trust the email in the body when no verifier is
// enabled; it is meant for local development only.
func NewAuthService(users UserStore, tokens TokenIssuer, verifier IdentityVerifier, oauth CodeExchanger, allowUnverified bool, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:           users,
		tokens:          tokens,
		verifier:        verifier,
		oauth:           oauth,
		allowUnverified: allowUnverified,
		logger:          logger,
	}
}

// Login exchanges an identity assertion for a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	var (
		claims domain.IdentityClaims
		err    error
	)
	switch {
	case s.verifier != nil && s.verifier.Enabled():
		claims, err = s.verifier.Verify(ctx, in.IDToken)
	case s.allowUnverified:
		claims, err = domain.IdentityClaims{Email: in.Email, Name: in.Name, Photo: in.Photo}.Normalize()
	default:
		s.logger.Warn("login rejected: no identity verifier configured")
		err = domain.NewError(domain.KindInvalidCredential, "identity assertion cannot be verified", nil)
	}
	if err != nil {
		span.RecordError(err)
		return domain.Session{}, err
	}
	return s.issue(ctx, claims)
}

// GoogleEnabled reports whether the server-side code flow is available.
func (s *AuthService) GoogleEnabled() bool {
	return s.oauth != nil
}

func (s *AuthService) GoogleAuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// GoogleCallback completes the code flow and signs the user in.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.GoogleCallback")
	defer span.End()

	if s.oauth == nil {
		return domain.Session{}, domain.NewError(domain.KindProviderUnavailable, "google sign-in is not configured", nil)
	}
	claims, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		span.RecordError(err)
		return domain.Session{}, err
	}
	return s.issue(ctx, claims)
}

func (s *AuthService) issue(ctx context.Context, claims domain.IdentityClaims) (domain.Session, error) {
	user, err := s.resolveUser(ctx, claims)
	if err != nil {
		return domain.Session{}, domain.NewError(domain.KindTokenIssuanceFailed, "resolve user", err)
	}

	token, issuedAt, err := s.tokens.Issue(user)
	if err != nil {
		return domain.Session{}, err
	}

	s.logger.Info("user signed in", zap.String("user_id", user.ID))
	return domain.Session{Token: token, User: user, IssuedAt: issuedAt}, nil
}

// resolveUser matches claims to an existing user or provisions one. Name and
// photo are refreshed from the latest assertion; an empty photo keeps the old one.
func (s *AuthService) resolveUser(ctx context.Context, claims domain.IdentityClaims) (domain.User, error) {
	user, err := s.users.FindByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		photo := user.Photo
		if claims.Photo != "" {
			photo = claims.Photo
		}
		if user.Name != claims.Name || user.Photo != photo {
			if err := s.users.UpdateProfile(ctx, user.ID, claims.Name, photo); err != nil {
				return domain.User{}, err
			}
			user.Name, user.Photo = claims.Name, photo
		}
		return user, nil
	case domain.KindOf(err) != domain.KindNotFound:
		return domain.User{}, err
	}

	user = domain.User{
		ID:    uuid.NewString(),
		Name:  claims.Name,
		Email: claims.Email,
		Photo: claims.Photo,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.users.FindByEmail(ctx, claims.Email)
		}
		return domain.User{}, err
	}
	s.logger.Info("provisioned user", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate resolves a bearer token to the session it represents.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Session{}, err
	}
	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.Session{}, domain.Unauthorized("session user no longer exists")
		}
		return domain.Session{}, err
	}
	return domain.Session{Token: token, User: user, IssuedAt: claims.IssuedAt}, nil
}
