package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamlist/auth"
	"roamlist/auth/jwkstest"
)

const (
	testIssuer   = "https://proj.supabase.co/auth/v1"
	testAudience = "authenticated"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newVerifier(t *testing.T, srv *jwkstest.Server) *auth.Verifier {
	t.Helper()
	return auth.NewVerifier(auth.Config{
		Issuer:             testIssuer,
		Audience:           testAudience,
		JWKSURL:            srv.URL,
		RefreshInterval:    10 * time.Minute,
		MinRefreshInterval: 0,
	}, nil, func() time.Time { return fixedNow })
}

func validClaims() jwkstest.Claims {
	return jwkstest.Claims{
		Issuer:   testIssuer,
		Audience: testAudience,
		Subject:  "user-123",
		Expires:  fixedNow.Add(5 * time.Minute),
	}
}

func TestVerify_ValidToken(t *testing.T) {
	kp := jwkstest.NewKeypair(t, "kid-1")
	srv := jwkstest.NewServer(t, kp)
	v := newVerifier(t, srv)

	sub, err := v.Verify(context.Background(), jwkstest.Mint(t, kp, validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestVerify_AudienceArray(t *testing.T) {
	kp := jwkstest.NewKeypair(t, "kid-1")
	srv := jwkstest.NewServer(t, kp)
	v := newVerifier(t, srv)

	c := validClaims()
	c.Audience = []string{"other", testAudience}
	sub, err := v.Verify(context.Background(), jwkstest.Mint(t, kp, c))

	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestVerify_KeysAreCached(t *testing.T) {
	kp := jwkstest.NewKeypair(t, "kid-1")
	srv := jwkstest.NewServer(t, kp)
	v := newVerifier(t, srv)
	token := jwkstest.Mint(t, kp, validClaims())

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), srv.Hits.Load())
}

func TestVerify_RotatedKeyIsFetched(t *testing.T) {
	kp1 := jwkstest.NewKeypair(t, "kid-1")
	kp2 := jwkstest.NewKeypair(t, "kid-2")
	srv := jwkstest.NewServer(t, kp1)
	v := newVerifier(t, srv)

	_, err := v.Verify(context.Background(), jwkstest.Mint(t, kp1, validClaims()))
	require.NoError(t, err)

	srv.SetKeys(kp2)
	sub, err := v.Verify(context.Background(), jwkstest.Mint(t, kp2, validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
	assert.Equal(t, int64(2), srv.Hits.Load())
}

func TestVerify_Rejects(t *testing.T) {
	kp := jwkstest.NewKeypair(t, "kid-1")
	stranger := jwkstest.NewKeypair(t, "kid-1")
	srv := jwkstest.NewServer(t, kp)

	future := fixedNow.Add(time.Hour)
	cases := map[string]func() string{
		"garbage": func() string { return "not-a-token" },
		"wrong issuer": func() string {
			c := validClaims()
			c.Issuer = "https://evil.example"
			return jwkstest.Mint(t, kp, c)
		},
		"wrong audience": func() string {
			c := validClaims()
			c.Audience = "anon"
			return jwkstest.Mint(t, kp, c)
		},
		"expired": func() string {
			c := validClaims()
			c.Expires = fixedNow.Add(-time.Minute)
			return jwkstest.Mint(t, kp, c)
		},
		"not yet valid": func() string {
			c := validClaims()
			c.NotBefore = &future
			return jwkstest.Mint(t, kp, c)
		},
		"missing subject": func() string {
			c := validClaims()
			c.Subject = ""
			return jwkstest.Mint(t, kp, c)
		},
		"signed by unknown key": func() string { return jwkstest.Mint(t, stranger, validClaims()) },
	}

	for name, mint := range cases {
		t.Run(name, func(t *testing.T) {
			v := newVerifier(t, srv)
			_, err := v.Verify(context.Background(), mint())
			require.ErrorIs(t, err, auth.ErrUnauthorized)
		})
	}
}

func TestVerify_CachedKeysSurviveJWKSOutage(t *testing.T) {
	kp := jwkstest.NewKeypair(t, "kid-1")
	srv := jwkstest.NewServer(t, kp)
	now := fixedNow
	v := auth.NewVerifier(auth.Config{
		Issuer:             testIssuer,
		Audience:           testAudience,
		JWKSURL:            srv.URL,
		RefreshInterval:    time.Minute,
		MinRefreshInterval: time.Minute,
	}, nil, func() time.Time { return now })

	claims := validClaims()
	claims.Expires = fixedNow.Add(time.Hour)
	token := jwkstest.Mint(t, kp, claims)

	_, err := v.Verify(context.Background(), token)
	require.NoError(t, err)

	srv.Fail.Store(true)
	now = now.Add(2 * time.Minute)

	sub, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
	assert.Equal(t, int64(2), srv.Hits.Load())

	// The failed attempt counts, so the next call inside the interval does not refetch.
	_, err = v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.Hits.Load())

	unknown := jwkstest.NewKeypair(t, "kid-2")
	now = now.Add(2 * time.Minute)
	_, err = v.Verify(context.Background(), jwkstest.Mint(t, unknown, claims))
	require.ErrorIs(t, err, auth.ErrUnauthorized)
}
