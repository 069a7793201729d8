package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/url"
	"strings"
)

const (
	defaultHotelLimit     = 6
	maxHotelLimit         = 10
	mockHotelPages        = 3
	hotelPlaceholderImage = "/placeholder.svg?height=200&width=300"
)

type Hotel struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Rating     float64  `json:"rating"`
	Price      float64  `json:"price"`
	Currency   string   `json:"currency"`
	Amenities  []string `json:"amenities"`
	Image      string   `json:"image"`
	BookingURL string   `json:"bookingUrl"`
	Address    string   `json:"address"`
}

type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Page        int
	Limit       int
}

type HotelPage struct {
	Hotels  []Hotel `json:"hotels"`
	HasMore bool    `json:"hasMore"`
	Page    int     `json:"page"`
	Source  Source  `json:"source"`
}

// HotelFinder lists hotels from Amadeus when configured and from seeded mock data otherwise.
type HotelFinder struct {
	amadeus *AmadeusClient
	seed    int64
	logger  *slog.Logger
}

// NewHotelFinder builds a finder. A nil amadeus client means mock data only.
func NewHotelFinder(amadeus *AmadeusClient, seed int64, logger *slog.Logger) *HotelFinder {
	if logger == nil {
		logger = slog.Default()
	}
	return &HotelFinder{amadeus: amadeus, seed: seed, logger: logger}
}

// Search validates q and returns one page of hotels. Only invalid input is reported as an error:
// a failed live lookup falls back to mock data.
func (f *HotelFinder) Search(ctx context.Context, q HotelQuery) (HotelPage, error) {
	req, err := ParseTripRequest(q.Destination, q.CheckIn, q.CheckOut)
	if err != nil {
		return HotelPage{}, err
	}
	q.Destination, q.CheckIn, q.CheckOut = req.Destination, req.StartString(), req.EndString()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultHotelLimit
	}
	if q.Limit > maxHotelLimit {
		q.Limit = maxHotelLimit
	}

	if f.amadeus != nil {
		hotels, err := f.amadeus.SearchHotels(ctx, q.Destination, q.CheckIn, q.CheckOut)
		if err == nil {
			return paginate(hotels, q), nil
		}
		f.logger.WarnContext(ctx, "amadeus hotel search failed, using mock hotels",
			"destination", q.Destination, "error", err)
	}

	return HotelPage{
		Hotels:  mockHotels(f.seed, q),
		HasMore: q.Page < mockHotelPages,
		Page:    q.Page,
		Source:  SourceFallback,
	}, nil
}

func paginate(hotels []Hotel, q HotelQuery) HotelPage {
	start := (q.Page - 1) * q.Limit
	if start > len(hotels) {
		start = len(hotels)
	}
	end := min(start+q.Limit, len(hotels))
	return HotelPage{
		Hotels:  hotels[start:end],
		HasMore: end < len(hotels),
		Page:    q.Page,
		Source:  SourceLive,
	}
}

type hotelTemplate struct {
	prefix, suffix     string
	minPrice, maxPrice int
	amenities          []string
}

var hotelTemplates = []hotelTemplate{
	{"Grand", "Palace Hotel", 8000, 15000, []string{"wifi", "parking", "breakfast"}},
	{"Royal", "Resort & Spa", 12000, 25000, []string{"wifi", "pool", "gym", "spa"}},
	{"", "Heritage Hotel", 6000, 12000, []string{"wifi", "breakfast", "restaurant"}},
	{"Luxury", "Suites", 10000, 20000, []string{"wifi", "parking", "pool", "breakfast"}},
	{"Boutique", "Inn", 5000, 10000, []string{"wifi", "gym", "restaurant", "bar"}},
	{"Premium", "Lodge", 7000, 14000, []string{"wifi", "spa", "pool", "parking"}},
	{"Comfort", "Hotel", 4000, 8000, []string{"wifi", "breakfast", "gym"}},
	{"Elite", "Resort", 15000, 30000, []string{"wifi", "pool", "spa", "restaurant", "bar"}},
	{"Classic", "Hotel & Spa", 9000, 18000, []string{"wifi", "parking", "breakfast", "gym"}},
	{"Modern", "Business Hotel", 6500, 13000, []string{"wifi", "restaurant", "pool"}},
}

func mockHotels(seed int64, q HotelQuery) []Hotel {
	r := seededRand(seed, strings.ToLower(q.Destination), q.CheckIn, q.CheckOut, fmt.Sprint(q.Page))

	n := min(q.Limit, len(hotelTemplates))
	hotels := make([]Hotel, n)
	for i := 0; i < n; i++ {
		t := hotelTemplates[i]
		name := strings.TrimSpace(strings.Join([]string{t.prefix, q.Destination, t.suffix}, " "))
		hotels[i] = Hotel{
			ID:         fmt.Sprintf("hotel-%d-%d", q.Page, i),
			Name:       name,
			Rating:     math.Round((r.Float64()*2+3)*10) / 10,
			Price:      float64(t.minPrice + r.IntN(t.maxPrice-t.minPrice)),
			Currency:   "INR",
			Amenities:  append([]string(nil), t.amenities...),
			Image:      hotelPlaceholderImage,
			BookingURL: bookingURL(r.IntN(bookingProviders), q.Destination, q.CheckIn, q.CheckOut),
			Address:    fmt.Sprintf("%s City Center, %s", q.Destination, q.Destination),
		}
	}
	return hotels
}

const bookingProviders = 5

// bookingURL builds a search link on one of the supported booking sites.
func bookingURL(provider int, destination, checkIn, checkOut string) string {
	dest := url.QueryEscape(destination)
	slug := url.PathEscape(strings.Join(strings.Fields(strings.ToLower(destination)), "-"))

	switch provider % bookingProviders {
	case 1:
		return fmt.Sprintf("https://www.agoda.com/search?city=%s&checkIn=%s&checkOut=%s&rooms=1&adults=2&children=0&currency=INR", dest, checkIn, checkOut)
	case 2:
		return fmt.Sprintf("https://www.expedia.co.in/Hotel-Search?destination=%s&startDate=%s&endDate=%s&rooms=1&adults=2&currency=INR", dest, checkIn, checkOut)
	case 3:
		return fmt.Sprintf("https://www.makemytrip.com/hotels/%s-hotels.html?checkin=%s&checkout=%s&rooms=1&adults=2&currency=INR", slug, checkIn, checkOut)
	case 4:
		return fmt.Sprintf("https://www.goibibo.com/hotels/%s-hotels/?checkin=%s&checkout=%s&guests=2&rooms=1", slug, checkIn, checkOut)
	default:
		return fmt.Sprintf("https://www.booking.com/searchresults.html?ss=%s&checkin=%s&checkout=%s&group_adults=2&group_children=0&selected_currency=INR", dest, checkIn, checkOut)
	}
}

// seededRand returns a generator that yields the same sequence for the same seed and parts.
func seededRand(seed int64, parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}
