// Package auth verifies bearer tokens issued by the hosted auth provider.
//
// The provider signs access tokens with RS256 and publishes its public keys as a JWKS document.
// Verify checks the signature against those keys, then iss, aud, exp and nbf, and returns the
// token subject as the user ID.
package auth

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

type Config struct {
	Issuer    string
	Audience  string
	JWKSURL   string
	ClockSkew time.Duration

	// RefreshInterval forces a key reload to pick up rotation. MinRefreshInterval bounds reloads
	// triggered by an unknown kid.
	RefreshInterval    time.Duration
	MinRefreshInterval time.Duration

	// Logger reports failed key reloads. Nil means slog.Default().
	Logger *slog.Logger
}

type Verifier struct {
	cfg    Config
	client *http.Client
	now    func() time.Time

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	lastAttempt time.Time
}

// NewVerifier builds a Verifier. A nil client gets a 5s timeout; a nil now uses time.Now.
func NewVerifier(cfg Config, client *http.Client, now func() time.Time) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if now == nil {
		now = time.Now
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Verifier{
		cfg:    cfg,
		client: client,
		now:    now,
		keys:   map[string]*rsa.PublicKey{},
	}
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

type tokenClaims struct {
	Iss string          `json:"iss"`
	Sub string          `json:"sub"`
	Aud json.RawMessage `json:"aud"`
	Exp *int64          `json:"exp"`
	Nbf *int64          `json:"nbf"`
}

// Verify returns the subject of a valid token. Every failure is reported as ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	h, claims, signingInput, sig, err := parseToken(token)
	if err != nil || h.Alg != "RS256" || h.Kid == "" {
		return "", ErrUnauthorized
	}
	if err := v.maybeRefresh(ctx, h.Kid); err != nil {
		return "", ErrUnauthorized
	}

	v.mu.Lock()
	pub := v.keys[h.Kid]
	v.mu.Unlock()
	if pub == nil {
		return "", ErrUnauthorized
	}

	sum := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, sum[:], sig); err != nil {
		return "", ErrUnauthorized
	}
	if err := v.checkClaims(claims); err != nil {
		return "", ErrUnauthorized
	}
	return claims.Sub, nil
}

func (v *Verifier) checkClaims(c tokenClaims) error {
	now := v.now()
	skew := v.cfg.ClockSkew

	switch {
	case c.Iss != v.cfg.Issuer:
		return fmt.Errorf("iss mismatch")
	case !audienceMatches(c.Aud, v.cfg.Audience):
		return fmt.Errorf("aud mismatch")
	case c.Exp == nil:
		return fmt.Errorf("missing exp")
	case now.After(time.Unix(*c.Exp, 0).Add(skew)):
		return fmt.Errorf("token expired")
	case c.Nbf != nil && now.Before(time.Unix(*c.Nbf, 0).Add(-skew)):
		return fmt.Errorf("token not yet valid")
	case c.Sub == "":
		return fmt.Errorf("missing sub")
	}
	return nil
}

// maybeRefresh reloads the key set when it is stale or when kid is unknown. Attempts, failed ones
// included, are spaced by RefreshInterval for known kids and MinRefreshInterval for unknown ones. A
// failed reload keeps the cached keys, so tokens signed by a cached kid still verify during a JWKS
// outage. Concurrent callers may both refresh; the last writer wins.
func (v *Verifier) maybeRefresh(ctx context.Context, kid string) error {
	now := v.now()

	v.mu.Lock()
	cached := v.keys[kid] != nil
	since := now.Sub(v.lastAttempt)
	first := v.lastAttempt.IsZero()
	stale := !first && cached && since >= v.cfg.RefreshInterval
	unknown := !cached && (first || since >= v.cfg.MinRefreshInterval)
	if stale || unknown {
		v.lastAttempt = now
	}
	v.mu.Unlock()

	if !stale && !unknown {
		return nil
	}
	if err := v.refresh(ctx); err != nil {
		if cached {
			v.cfg.Logger.WarnContext(ctx, "jwks reload failed, using cached keys", "error", err, "kid", kid)
			return nil
		}
		return err
	}
	return nil
}

func (v *Verifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed (%d)", resp.StatusCode)
	}
	keys, err := parseJWKS(body)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.keys = keys
	v.mu.Unlock()
	return nil
}

func parseToken(token string) (tokenHeader, tokenClaims, string, []byte, error) {
	var (
		h tokenHeader
		c tokenClaims
	)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return h, c, "", nil, fmt.Errorf("token must have 3 parts")
	}
	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return h, c, "", nil, err
	}
	cb, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return h, c, "", nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return h, c, "", nil, err
	}
	if err := json.Unmarshal(hb, &h); err != nil {
		return h, c, "", nil, err
	}
	if err := json.Unmarshal(cb, &c); err != nil {
		return h, c, "", nil, err
	}
	return h, c, parts[0] + "." + parts[1], sig, nil
}

// audienceMatches accepts aud as a string or an array of strings.
func audienceMatches(raw json.RawMessage, expected string) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == expected
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, a := range list {
			if a == expected {
				return true
			}
		}
	}
	return false
}

func parseJWKS(b []byte) (map[string]*rsa.PublicKey, error) {
	var set struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("parse jwks: %w", err)
	}

	out := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		// EC keys (ES256) are skipped; only RS256 tokens are accepted.
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("jwk %s modulus: %w", k.Kid, err)
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("jwk %s exponent: %w", k.Kid, err)
		}
		e := new(big.Int).SetBytes(eb)
		if !e.IsInt64() || e.Int64() <= 0 || e.Int64() > 1<<31-1 {
			return nil, fmt.Errorf("jwk %s: invalid exponent", k.Kid)
		}
		out[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable RSA keys in jwks")
	}
	return out, nil
}
