package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamlist/config"
)

// fakeAmadeus serves the token, city, hotel list and offer endpoints used by SearchHotels.
type fakeAmadeus struct {
	*httptest.Server
	tokenCalls atomic.Int32
	offersBody string
	failOffers bool
}

func newFakeAmadeus(t *testing.T) *fakeAmadeus {
	t.Helper()
	f := &fakeAmadeus{
		offersBody: `{"data":[
			{"hotel":{"hotelId":"HLPAR001","name":"Hotel Lutetia","cityCode":"PAR","rating":"5",
			  "address":{"lines":["45 Boulevard Raspail"],"cityName":"PARIS"},"amenities":["WIFI","SPA","SWIMMING_POOL","WIFI"]},
			 "available":true,"offers":[{"price":{"total":"41250.00","currency":"INR"}}]},
			{"hotel":{"hotelId":"HLPAR002","name":"Sold Out Inn","cityCode":"PAR"},"available":false,"offers":[]},
			{"hotel":{"hotelId":"HLPAR003","name":"Hotel Citadines","cityCode":"PAR","address":{"cityName":"PARIS"}},
			 "available":true,"offers":[{"price":{"total":"12000","currency":"INR"}}]}
		]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		io.WriteString(w, `{"access_token":"tok","expires_in":1799}`)
	})
	mux.HandleFunc("/v1/reference-data/locations/cities", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Paris", r.URL.Query().Get("keyword"))
		io.WriteString(w, `{"data":[{"name":"PARIS","iataCode":"PAR"}]}`)
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PAR", r.URL.Query().Get("cityCode"))
		io.WriteString(w, `{"data":[{"hotelId":"HLPAR001"},{"hotelId":"HLPAR002"},{"hotelId":"HLPAR003"}]}`)
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		if f.failOffers {
			http.Error(w, `{"errors":[{"title":"SYSTEM ERROR"}]}`, http.StatusInternalServerError)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "HLPAR001,HLPAR002,HLPAR003", q.Get("hotelIds"))
		assert.Equal(t, "2024-07-01", q.Get("checkInDate"))
		assert.Equal(t, "2024-07-04", q.Get("checkOutDate"))
		assert.Equal(t, "INR", q.Get("currency"))
		io.WriteString(w, f.offersBody)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAmadeus) client() *AmadeusClient {
	return NewAmadeusClient(config.AmadeusConfig{ClientID: "id", ClientSecret: "secret"}, f.URL, f.Client())
}

func TestNewAmadeusClient_Disabled(t *testing.T) {
	assert.Nil(t, NewAmadeusClient(config.AmadeusConfig{ClientID: "id"}, "", nil))

	c := NewAmadeusClient(config.AmadeusConfig{ClientID: "id", ClientSecret: "s", Env: "production"}, "", nil)
	require.NotNil(t, c)
	assert.Equal(t, amadeusProdURL, c.baseURL)
}

func TestAmadeusClient_SearchHotels(t *testing.T) {
	fake := newFakeAmadeus(t)
	c := fake.client()

	hotels, err := c.SearchHotels(context.Background(), "Paris", "2024-07-01", "2024-07-04")

	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, "HLPAR001", hotels[0].ID)
	assert.Equal(t, 41250.0, hotels[0].Price)
	assert.Equal(t, 5.0, hotels[0].Rating)
	assert.Equal(t, "45 Boulevard Raspail", hotels[0].Address)
	assert.Equal(t, []string{"wifi", "spa", "pool"}, hotels[0].Amenities)
	assert.Equal(t, "PARIS", hotels[1].Address)
	assert.Equal(t, 4.0, hotels[1].Rating)

	// The token is reused for every call in the token's lifetime.
	_, err = c.SearchHotels(context.Background(), "Paris", "2024-07-01", "2024-07-04")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load())
}

func TestAmadeusClient_SearchHotelsUpstreamError(t *testing.T) {
	fake := newFakeAmadeus(t)
	fake.failOffers = true

	_, err := fake.client().SearchHotels(context.Background(), "Paris", "2024-07-01", "2024-07-04")

	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, uerr.Status)
}

func TestAmadeusClient_NoAvailability(t *testing.T) {
	fake := newFakeAmadeus(t)
	fake.offersBody = `{"data":[]}`

	_, err := fake.client().SearchHotels(context.Background(), "Paris", "2024-07-01", "2024-07-04")

	assert.ErrorIs(t, err, ErrNoHotels)
}

func TestParseRating(t *testing.T) {
	assert.Equal(t, 4.0, parseRating(""))
	assert.Equal(t, 4.0, parseRating("n/a"))
	assert.Equal(t, 3.0, parseRating("3"))
	assert.Equal(t, 5.0, parseRating("7"))
}
