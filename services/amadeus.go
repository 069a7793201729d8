package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"roamlist/config"
)

const (
	amadeusTestURL = "https://test.api.amadeus.com"
	amadeusProdURL = "https://api.amadeus.com"

	// Hotel offers accepts a bounded list of IDs per call.
	maxOfferHotelIDs = 20
)

var ErrNoHotels = errors.New("no hotels found")

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

// NewAmadeusClient returns nil when no credentials are configured. An empty baseURL is derived from
// cfg.Env: "production" uses the live API, anything else the free test environment.
func NewAmadeusClient(cfg config.AmadeusConfig, baseURL string, httpClient *http.Client) *AmadeusClient {
	if !cfg.Enabled() {
		return nil
	}
	if baseURL == "" {
		baseURL = amadeusTestURL
		if cfg.Env == "production" {
			baseURL = amadeusProdURL
		}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &AmadeusClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
	}
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", errors.New("token response without access_token")
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return result.AccessToken, nil
}

func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		return c.refreshToken(ctx)
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Provider: "amadeus", Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(body), 200))}
	}
	return body, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// SearchHotels resolves the destination to a city code, lists hotels in that city and returns the
// available offers for the first of them, priced in INR.
func (c *AmadeusClient) SearchHotels(ctx context.Context, destination, checkIn, checkOut string) ([]Hotel, error) {
	cityCode, err := c.cityCode(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("city lookup failed: %w", err)
	}

	hotelIDs, err := c.hotelIDsByCity(ctx, cityCode)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, fmt.Errorf("%w in city %s", ErrNoHotels, cityCode)
	}
	if len(hotelIDs) > maxOfferHotelIDs {
		hotelIDs = hotelIDs[:maxOfferHotelIDs]
	}

	hotels, err := c.hotelOffers(ctx, hotelIDs, destination, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}
	if len(hotels) == 0 {
		return nil, fmt.Errorf("%w with availability in %s", ErrNoHotels, cityCode)
	}
	return hotels, nil
}

type amadeusCityResponse struct {
	Data []struct {
		Name     string `json:"name"`
		IATACode string `json:"iataCode"`
	} `json:"data"`
}

// cityCode accepts a three-letter code as-is and otherwise searches cities by keyword.
func (c *AmadeusClient) cityCode(ctx context.Context, destination string) (string, error) {
	d := strings.TrimSpace(destination)
	if len(d) == 3 && strings.ToUpper(d) == d {
		return d, nil
	}

	q := url.Values{}
	q.Set("keyword", d)
	q.Set("max", "5")
	body, err := c.get(ctx, "/v1/reference-data/locations/cities", q)
	if err != nil {
		return "", err
	}

	var resp amadeusCityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse city search: %w", err)
	}
	for _, city := range resp.Data {
		if city.IATACode != "" {
			return city.IATACode, nil
		}
	}
	return "", fmt.Errorf("no city code for %q", destination)
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelIDsByCity(ctx context.Context, cityCode string) ([]string, error) {
	q := url.Values{}
	q.Set("cityCode", cityCode)
	q.Set("radius", "5")
	q.Set("radiusUnit", "KM")
	q.Set("hotelSource", "ALL")
	body, err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", q)
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Rating   string `json:"rating"`
			Address  struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
			Amenities []string `json:"amenities"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelOffers(ctx context.Context, hotelIDs []string, destination, checkIn, checkOut string) ([]Hotel, error) {
	q := url.Values{}
	q.Set("hotelIds", strings.Join(hotelIDs, ","))
	q.Set("checkInDate", checkIn)
	q.Set("checkOutDate", checkOut)
	q.Set("adults", "2")
	q.Set("roomQuantity", "1")
	q.Set("currency", "INR")
	q.Set("bestRateOnly", "true")
	body, err := c.get(ctx, "/v3/shopping/hotel-offers", q)
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse hotel offers: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}

		address := strings.Join(item.Hotel.Address.Lines, ", ")
		if address == "" {
			address = item.Hotel.Address.CityName
		}
		if address == "" {
			address = destination
		}

		hotels = append(hotels, Hotel{
			ID:         item.Hotel.HotelID,
			Name:       item.Hotel.Name,
			Rating:     parseRating(item.Hotel.Rating),
			Price:      price,
			Currency:   item.Offers[0].Price.Currency,
			Amenities:  normalizeAmenities(item.Hotel.Amenities),
			Image:      hotelPlaceholderImage,
			BookingURL: bookingURL(0, item.Hotel.Name+" "+destination, checkIn, checkOut),
			Address:    address,
		})
	}
	return hotels, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func parsePrice(s string) float64 {
	var price float64
	fmt.Sscanf(s, "%f", &price)
	return price
}

func parseRating(s string) float64 {
	if s == "" {
		return 4.0
	}
	var r float64
	fmt.Sscanf(s, "%f", &r)
	if r <= 0 {
		return 4.0
	}
	// Amadeus returns star ratings 1-5
	if r > 5 {
		r = 5
	}
	return r
}

// normalizeAmenities lower-cases Amadeus amenity codes (WIFI, SWIMMING_POOL) into the listing vocabulary.
func normalizeAmenities(codes []string) []string {
	known := map[string]string{
		"WIFI": "wifi", "WI-FI_IN_ROOM": "wifi", "PARKING": "parking", "SWIMMING_POOL": "pool",
		"FITNESS_CENTER": "gym", "SPA": "spa", "RESTAURANT": "restaurant", "BAR": "bar",
		"BREAKFAST": "breakfast",
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if a, ok := known[strings.ToUpper(code)]; ok && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
