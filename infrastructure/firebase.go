package infrastructure

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobselect/config"
	"jobselect/domain"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	firebaseCertsURL     = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	defaultCertsMaxAge   = time.Hour
)

// FirebaseVerifier checks ID tokens minted by Firebase Auth for one project,
// as returned by the password sign-in endpoint.
type FirebaseVerifier struct {
	projectID string
	keys      func(ctx context.Context) (map[string]*rsa.PublicKey, error)
	now       func() time.Time
}

func NewFirebaseVerifier(cfg *config.Config) *FirebaseVerifier {
	certs := &certCache{url: firebaseCertsURL, client: &http.Client{Timeout: 10 * time.Second}, now: time.Now}
	return &FirebaseVerifier{projectID: cfg.FirebaseProjectID, keys: certs.keys, now: time.Now}
}

func (v *FirebaseVerifier) Enabled() bool {
	return v != nil && v.projectID != ""
}

type firebaseClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (domain.IdentityClaims, error) {
	if rawToken == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "id token is required", nil)
	}
	keys, err := v.keys(ctx)
	if err != nil {
		return domain.IdentityClaims{}, domain.NewError(domain.KindProviderUnavailable, "fetch firebase certificates", err)
	}

	var claims firebaseClaims
	_, err = jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "verify firebase id token", err)
	}
	if claims.Subject == "" {
		return domain.IdentityClaims{}, domain.NewError(domain.KindInvalidCredential, "firebase id token has no subject", nil)
	}

	return domain.IdentityClaims{
		Email: claims.Email,
		Name:  claims.Name,
		Photo: claims.Picture,
	}.Normalize()
}

// certCache holds the securetoken signing certificates until the max-age the
// endpoint advertises runs out.
type certCache struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	cached  map[string]*rsa.PublicKey
	expires time.Time
}

func (c *certCache) keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && c.now().Before(c.expires) {
		return c.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("certificate endpoint answered %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return nil, fmt.Errorf("decode certificates: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("parse certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	c.cached = keys
	c.expires = c.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsMaxAge
}
