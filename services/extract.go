package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrNoJSON = errors.New("no balanced JSON object found")

// ParseError reports generated text that did not contain a usable payload.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse generated text: %s: %v", e.Reason, e.Err)
	}
	return "parse generated text: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// FindJSONObject returns the first balanced top-level {...} span in s.
func FindJSONObject(s string) (string, error) {
	spans := jsonCandidates(s)
	if len(spans) == 0 {
		return "", ErrNoJSON
	}
	return spans[0], nil
}

// jsonCandidates returns the outermost balanced {...} spans of s in order, in a single pass. Braces
// inside JSON strings are ignored. Quotes only open a string inside braces, so quotes and apostrophes
// in the surrounding prose do not matter. An unclosed brace does not hide balanced spans after it.
func jsonCandidates(s string) []string {
	type span struct{ start, end int }
	var (
		open              []int
		spans             []span
		inString, escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = len(open) > 0
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			// Spans closed earlier inside this one are no longer outermost.
			for len(spans) > 0 && spans[len(spans)-1].start > start {
				spans = spans[:len(spans)-1]
			}
			spans = append(spans, span{start, i})
		}
	}

	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp.start : sp.end+1]
	}
	return out
}

// decodeSpan decodes the first candidate span that is valid JSON, so braces in prose such as
// "{Paris}" ahead of the payload are skipped.
func decodeSpan(raw string, v any) error {
	spans := jsonCandidates(raw)
	if len(spans) == 0 {
		return &ParseError{Reason: "locate payload", Err: ErrNoJSON}
	}
	span := spans[0]
	for _, candidate := range spans {
		if json.Valid([]byte(candidate)) {
			span = candidate
			break
		}
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &ParseError{Reason: "decode payload", Err: err}
	}
	return nil
}

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	// distinctnames rejects packing categories whose names differ only in case.
	if err := v.RegisterValidation("distinctnames", func(fl validator.FieldLevel) bool {
		cats, ok := fl.Field().Interface().([]PackingCategory)
		if !ok {
			return false
		}
		seen := make(map[string]bool, len(cats))
		for _, c := range cats {
			key := strings.ToLower(c.Name)
			if seen[key] {
				return false
			}
			seen[key] = true
		}
		return true
	}); err != nil {
		panic(err)
	}
	return v
}

type itineraryPayload struct {
	Itinerary []ItineraryDay `json:"itinerary" validate:"dive"`
}

type packingPayload struct {
	Categories []PackingCategory `json:"categories" validate:"required,min=1,distinctnames,dive"`
}

// ExtractItinerary decodes and validates an itinerary for req. Incomplete payloads are rejected.
func ExtractItinerary(raw string, req TripRequest) ([]ItineraryDay, error) {
	var payload itineraryPayload
	if err := decodeSpan(raw, &payload); err != nil {
		return nil, err
	}
	days, err := validateItinerary(payload.Itinerary, req)
	if err != nil {
		return nil, &ParseError{Reason: "invalid itinerary", Err: err}
	}
	return days, nil
}

// validateItinerary checks field shapes with payloadValidator, then the day sequence and dates, which
// depend on req.
func validateItinerary(days []ItineraryDay, req TripRequest) ([]ItineraryDay, error) {
	for i := range days {
		trimDay(&days[i])
	}
	if err := payloadValidator.Struct(itineraryPayload{Itinerary: days}); err != nil {
		return nil, err
	}

	want := req.DayCount()
	if len(days) != want {
		return nil, fmt.Errorf("got %d days, want %d", len(days), want)
	}
	for i := range days {
		d := &days[i]
		n := i + 1
		if d.Day == 0 {
			d.Day = n
		}
		if d.Day != n {
			return nil, fmt.Errorf("day %d: out of sequence (got %d)", n, d.Day)
		}
		wantDate := req.DateOf(n)
		if d.Date != "" && d.Date != wantDate {
			return nil, fmt.Errorf("day %d: date %q, want %s", n, d.Date, wantDate)
		}
		d.Date = wantDate
	}
	return days, nil
}

func trimDay(d *ItineraryDay) {
	d.Date = strings.TrimSpace(d.Date)
	for _, a := range []*Activity{&d.Morning, &d.Afternoon, &d.Evening} {
		a.Place = strings.TrimSpace(a.Place)
		a.Description = strings.TrimSpace(a.Description)
	}
	trimAll(d.LocalTips)
}

func trimAll(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

// ExtractPackingList decodes and validates packing categories. A missing color is filled from the palette.
func ExtractPackingList(raw string) ([]PackingCategory, error) {
	var payload packingPayload
	if err := decodeSpan(raw, &payload); err != nil {
		return nil, err
	}
	cats, err := validatePackingList(payload.Categories)
	if err != nil {
		return nil, &ParseError{Reason: "invalid packing list", Err: err}
	}
	return cats, nil
}

func validatePackingList(cats []PackingCategory) ([]PackingCategory, error) {
	for i := range cats {
		cats[i].Name = strings.TrimSpace(cats[i].Name)
		trimAll(cats[i].Items)
	}
	if err := payloadValidator.Struct(packingPayload{Categories: cats}); err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.TrimSpace(cats[i].Color) == "" {
			cats[i].Color = categoryColor(cats[i].Name)
		}
	}
	return cats, nil
}

func categoryColor(name string) string {
	for canonical, color := range categoryColors {
		if strings.EqualFold(canonical, name) {
			return color
		}
	}
	return defaultCategoryColor
}
