package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const geoapifyBaseURL = "https://api.geoapify.com"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Attraction struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Rating      float64     `json:"rating"`
	Description string      `json:"description"`
	Details     string      `json:"details"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

type AttractionList struct {
	Attractions []Attraction `json:"attractions"`
	Source      Source       `json:"source"`
}

// AttractionFinder looks up sights through Geoapify Places. Live results are cached per destination;
// fallback results are not, so a recovered upstream is picked up on the next call.
type AttractionFinder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	seed       int64
	logger     *slog.Logger
}

func NewAttractionFinder(apiKey, baseURL string, httpClient *http.Client, ttl time.Duration, seed int64, logger *slog.Logger) *AttractionFinder {
	if baseURL == "" {
		baseURL = geoapifyBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttractionFinder{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache.New(ttl, time.Hour),
		seed:       seed,
		logger:     logger,
	}
}

func (f *AttractionFinder) Find(ctx context.Context, destination string) (AttractionList, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return AttractionList{}, fmt.Errorf("%w: destination is required", ErrMissingInput)
	}

	if f.apiKey != "" {
		cacheKey := strings.ToLower(destination)
		if cached, found := f.cache.Get(cacheKey); found {
			return AttractionList{Attractions: cached.([]Attraction), Source: SourceLive}, nil
		}

		attractions, err := f.fetch(ctx, destination)
		if err == nil && len(attractions) > 0 {
			f.cache.Set(cacheKey, attractions, cache.DefaultExpiration)
			return AttractionList{Attractions: attractions, Source: SourceLive}, nil
		}
		if err == nil {
			err = errors.New("no places returned")
		}
		f.logger.WarnContext(ctx, "geoapify lookup failed, using mock attractions",
			"destination", destination, "error", err)
	}

	return AttractionList{Attractions: mockAttractions(destination), Source: SourceFallback}, nil
}

type geoapifyResponse struct {
	Features []struct {
		Properties struct {
			PlaceID    string   `json:"place_id"`
			Name       string   `json:"name"`
			Categories []string `json:"categories"`
			Formatted  string   `json:"formatted"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (f *AttractionFinder) fetch(ctx context.Context, destination string) ([]Attraction, error) {
	q := url.Values{}
	q.Set("categories", "tourism.attraction,tourism.sights")
	q.Set("filter", "place:"+destination)
	q.Set("limit", "20")
	q.Set("apiKey", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/v2/places?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: "geoapify", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Provider: "geoapify", Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(body), 200))}
	}

	var out geoapifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse geoapify response: %w", err)
	}

	r := seededRand(f.seed, "attractions", strings.ToLower(destination))
	attractions := make([]Attraction, 0, len(out.Features))
	for i, feat := range out.Features {
		p := feat.Properties
		a := Attraction{
			ID:          p.PlaceID,
			Name:        p.Name,
			Category:    "attraction",
			Rating:      math.Round((r.Float64()*2+3)*10) / 10,
			Description: "Popular attraction in " + destination,
			Details:     "A must-visit destination offering unique experiences and cultural insights.",
			Address:     p.Formatted,
		}
		if a.ID == "" {
			a.ID = fmt.Sprintf("attraction-%d", i)
		}
		if a.Name == "" {
			a.Name = fmt.Sprintf("Attraction %d", i+1)
		}
		if a.Address == "" {
			a.Address = destination
		}
		if len(p.Categories) > 0 {
			if parts := strings.Split(p.Categories[0], "."); len(parts) > 1 {
				a.Category = parts[1]
			}
		}
		if c := feat.Geometry.Coordinates; len(c) >= 2 {
			a.Coordinates = Coordinates{Lat: c[1], Lng: c[0]}
		}
		attractions = append(attractions, a)
	}
	return attractions, nil
}

func mockAttractions(destination string) []Attraction {
	return []Attraction{
		{
			ID:          "1",
			Name:        fmt.Sprintf("Historic %s Center", destination),
			Category:    "historical",
			Rating:      4.5,
			Description: "Beautiful historic architecture and cultural sites with centuries of rich heritage.",
			Details:     "Explore old temples, colonial buildings and traditional markets. Guided tours run in several languages.",
			Address:     destination + " Historic District",
		},
		{
			ID:          "2",
			Name:        destination + " Central Park",
			Category:    "nature",
			Rating:      4.8,
			Description: "Large urban park perfect for walking, jogging, and relaxation.",
			Details:     "Green space with lakes, walking trails and picnic areas. Good for families and nature lovers.",
			Address:     destination + " Central Area",
		},
		{
			ID:          "3",
			Name:        destination + " Art Museum",
			Category:    "culture",
			Rating:      4.3,
			Description: "Art collection with rotating exhibitions.",
			Details:     "Contemporary and classical art from local and international artists. Special exhibitions change monthly.",
			Address:     destination + " Arts District",
		},
		{
			ID:          "4",
			Name:        destination + " Local Market",
			Category:    "shopping",
			Rating:      4.6,
			Description: "Vibrant local market with authentic crafts and food.",
			Details:     "Traditional crafts, street food and handmade souvenirs. Best visited in the morning for fresh produce.",
			Address:     destination + " Market Square",
		},
		{
			ID:          "5",
			Name:        destination + " Scenic Viewpoint",
			Category:    "nature",
			Rating:      4.7,
			Description: "Panoramic views of the city and surrounding landscape.",
			Details:     "A favourite spot for sunrise and sunset photography, reached by hiking trail or cable car.",
			Address:     destination + " Hills",
		},
	}
}
