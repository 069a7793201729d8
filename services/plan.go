package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MaxTripDays bounds a trip so one request cannot ask for an unbounded itinerary, forecast or PDF.
const MaxTripDays = 90

// ErrMissingInput marks caller-supplied trip parameters that are absent or invalid.
var ErrMissingInput = errors.New("missing parameters")

// TripRequest is the input shared by every generation pipeline.
type TripRequest struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
}

// ParseTripRequest trims the destination and parses both dates as YYYY-MM-DD.
func ParseTripRequest(destination, startDate, endDate string) (TripRequest, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" || strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return TripRequest{}, fmt.Errorf("%w: destination, startDate and endDate are required", ErrMissingInput)
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return TripRequest{}, fmt.Errorf("%w: invalid startDate, use YYYY-MM-DD", ErrMissingInput)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return TripRequest{}, fmt.Errorf("%w: invalid endDate, use YYYY-MM-DD", ErrMissingInput)
	}
	req := TripRequest{Destination: destination, StartDate: start, EndDate: end}
	if err := req.Validate(); err != nil {
		return TripRequest{}, err
	}
	return req, nil
}

func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrMissingInput)
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: endDate must not be before startDate", ErrMissingInput)
	}
	if r.DayCount() > MaxTripDays {
		return fmt.Errorf("%w: trip is longer than %d days", ErrMissingInput, MaxTripDays)
	}
	return nil
}

// DayCount is the number of calendar days in the trip, both endpoints included. It works on Unix
// seconds of the civil dates, so ranges longer than a time.Duration still count correctly.
func (r TripRequest) DayCount() int {
	start := time.Date(r.StartDate.Year(), r.StartDate.Month(), r.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.EndDate.Year(), r.EndDate.Month(), r.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	n := int((end.Unix()-start.Unix())/86400) + 1
	if n < 1 {
		return 1
	}
	return n
}

// DateOf returns the YYYY-MM-DD date of the 1-based day.
func (r TripRequest) DateOf(day int) string {
	return r.StartDate.AddDate(0, 0, day-1).Format(dateLayout)
}

func (r TripRequest) StartString() string { return r.StartDate.Format(dateLayout) }
func (r TripRequest) EndString() string   { return r.EndDate.Format(dateLayout) }

// The validate tags describe a complete generated payload; ExtractItinerary and ExtractPackingList
// enforce them right after decoding.
type Activity struct {
	Time        string `json:"time"`
	Place       string `json:"place" validate:"required"`
	Description string `json:"description" validate:"required"`
	Duration    string `json:"duration"`
}

type ItineraryDay struct {
	Day       int      `json:"day" validate:"gte=0"`
	Date      string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Morning   Activity `json:"morning"`
	Afternoon Activity `json:"afternoon"`
	Evening   Activity `json:"evening"`
	LocalTips []string `json:"localTips" validate:"required,min=3,max=4,dive,required"`
}

type PackingCategory struct {
	Name  string   `json:"name" validate:"required"`
	Color string   `json:"color"`
	Items []string `json:"items" validate:"required,min=6,max=10,dive,required"`
}

// Source tells where a payload came from: generated, a live upstream listing, or fallback data.
// It is diagnostic only.
type Source string

const (
	SourceAI       Source = "ai"
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

type ItineraryResult struct {
	Days   []ItineraryDay
	Source Source
}

type PackingResult struct {
	Categories []PackingCategory
	Source     Source
}

// Canonical packing categories, in display order.
const (
	CategoryClothing        = "Clothing"
	CategoryDocuments       = "Documents"
	CategoryEssentials      = "Essentials"
	CategoryWeatherSpecific = "Weather-Specific"
)

var categoryColors = map[string]string{
	CategoryClothing:        "bg-gradient-to-r from-blue-500 to-cyan-500",
	CategoryDocuments:       "bg-gradient-to-r from-purple-500 to-pink-500",
	CategoryEssentials:      "bg-gradient-to-r from-green-500 to-teal-500",
	CategoryWeatherSpecific: "bg-gradient-to-r from-orange-500 to-red-500",
}

const defaultCategoryColor = "bg-gradient-to-r from-gray-500 to-slate-500"

// season maps the trip start month to a Northern-hemisphere season name.
func season(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return "spring"
	case m >= time.June && m <= time.August:
		return "summer"
	case m >= time.September && m <= time.November:
		return "autumn"
	default:
		return "winter"
	}
}
