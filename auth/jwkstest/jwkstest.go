// Package jwkstest serves a swappable JWKS document and mints RS256 tokens for tests.
package jwkstest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type Keypair struct {
	Kid     string
	Private *rsa.PrivateKey
}

func NewKeypair(t testing.TB, kid string) Keypair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("jwkstest: generate key: %v", err)
	}
	return Keypair{Kid: kid, Private: priv}
}

// Server is an httptest JWKS endpoint. Hits counts fetches so tests can assert caching; setting Fail
// makes it answer 500.
type Server struct {
	*httptest.Server
	doc  atomic.Value // []byte
	Hits atomic.Int64
	Fail atomic.Bool
}

func NewServer(t testing.TB, keys ...Keypair) *Server {
	t.Helper()
	s := &Server{}
	s.SetKeys(keys...)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.Hits.Add(1)
		if s.Fail.Load() {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.doc.Load().([]byte))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetKeys replaces the published key set, simulating rotation.
func (s *Server) SetKeys(keys ...Keypair) {
	type jwk struct {
		Kty string `json:"kty"`
		Use string `json:"use"`
		Alg string `json:"alg"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	}
	doc := struct {
		Keys []jwk `json:"keys"`
	}{Keys: []jwk{}}
	for _, kp := range keys {
		pub := kp.Private.PublicKey
		doc.Keys = append(doc.Keys, jwk{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: kp.Kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	b, _ := json.Marshal(doc)
	s.doc.Store(b)
}

type Claims struct {
	Issuer    string
	Audience  any // string or []string
	Subject   string
	Expires   time.Time
	NotBefore *time.Time
}

func Mint(t testing.TB, kp Keypair, c Claims) string {
	t.Helper()
	header := map[string]any{"alg": "RS256", "typ": "JWT", "kid": kp.Kid}
	claims := map[string]any{
		"iss": c.Issuer,
		"aud": c.Audience,
		"sub": c.Subject,
		"exp": c.Expires.Unix(),
	}
	if c.NotBefore != nil {
		claims["nbf"] = c.NotBefore.Unix()
	}

	hb, _ := json.Marshal(header)
	cb, _ := json.Marshal(claims)
	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(hb) + "." + enc.EncodeToString(cb)
	sum := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, kp.Private, crypto.SHA256, sum[:])
	if err != nil {
		t.Fatalf("jwkstest: sign: %v", err)
	}
	return signingInput + "." + enc.EncodeToString(sig)
}
