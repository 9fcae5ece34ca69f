package auth

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

	"github.com/adaptive-quiz/backend/internal/config"
	"github.com/adaptive-quiz/backend/internal/models"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultCertsTTL      = time.Hour
)

// FirebaseVerifier validates Firebase ID tokens: RS256 signatures checked
// against Google's published x509 certificates, plus issuer, audience,
// expiry and subject.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

// NewFirebaseVerifier checks the service credential and prepares a verifier.
// Certificates are fetched lazily on the first verification.
func NewFirebaseVerifier(cfg config.IdentityConfig, client *http.Client) (*FirebaseVerifier, error) {
	if cfg.FirebaseProjectID == "" || cfg.FirebaseClientEmail == "" || cfg.FirebasePrivateKey == "" {
		return nil, fmt.Errorf("firebase credential incomplete")
	}
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.FirebasePrivateKey)); err != nil {
		return nil, fmt.Errorf("parse firebase private key: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	certsURL := cfg.FirebaseCertsURL
	if certsURL == "" {
		certsURL = config.DefaultFirebaseCertsURL
	}
	return &FirebaseVerifier{
		projectID: cfg.FirebaseProjectID,
		certsURL:  certsURL,
		client:    client,
		now:       time.Now,
	}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (models.Identity, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid")
		}
		return v.publicKey(ctx, kid)
	}

	token, err := jwt.Parse(tokenString, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	return models.Identity{UserID: sub, Email: email}, nil
}

func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || v.now().After(v.expires) {
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	return key, nil
}

// refresh must be called with mu held.
func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch certs: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return fmt.Errorf("parse cert %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if v, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsTTL
}
