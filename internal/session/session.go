// Package session authenticates API callers with signed bearer tokens.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session has been signed out")
)

// Identity is the authenticated caller.
type Identity struct {
	OwnerID   string
	TokenID   string
	ExpiresAt time.Time
}

// Provider validates HS256 tokens whose subject is the owner ID and keeps a
// list of signed-out token IDs until they would have expired anyway.
type Provider struct {
	secret []byte
	issuer string
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewProvider(secret, issuer string) *Provider {
	return &Provider{
		secret:  []byte(secret),
		issuer:  issuer,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a token for owner valid for ttl.
func (p *Provider) Issue(ownerID string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		Issuer:    p.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) Authenticate(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	id := Identity{OwnerID: claims.Subject, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
	if id.TokenID == "" {
		sum := sha256.Sum256([]byte(token))
		id.TokenID = hex.EncodeToString(sum[:])
	}

	p.mu.Lock()
	_, revoked := p.revoked[id.TokenID]
	p.mu.Unlock()
	if revoked {
		return Identity{}, ErrRevoked
	}
	return id, nil
}

// SignOut rejects the identity's token from now on.
func (p *Provider) SignOut(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[id.TokenID] = id.ExpiresAt
}

// PurgeExpired forgets revoked tokens that have expired and returns how many
// were dropped.
func (p *Provider) PurgeExpired() int {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for tokenID, exp := range p.revoked {
		if !exp.After(now) {
			delete(p.revoked, tokenID)
			n++
		}
	}
	return n
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware rejects requests without a valid bearer token with 401.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearer(r)
		if err == nil {
			var id Identity
			if id, err = p.Authenticate(token); err == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("WWW-Authenticate", `Bearer realm="framestorm"`)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	})
}

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
