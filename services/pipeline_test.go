package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text   string
	err    error
	panics bool
	calls  atomic.Int32
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.panics {
		panic("generator exploded")
	}
	return s.text, s.err
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestPlanner_NoCredentialUsesFallback(t *testing.T) {
	logger, buf := newTestLogger()
	p := NewPlanner(nil, logger)
	req := mustTrip(t, "Paris", "2024-07-01", "2024-07-03")

	res := p.Itinerary(context.Background(), req)

	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Days, 3)
	assert.Equal(t, "2024-07-03", res.Days[2].Date)
	assert.Equal(t, "fallback-only", p.Provider())

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "itinerary", lines[0]["pipeline"])
	assert.Equal(t, "Paris", lines[0]["destination"])
	assert.Contains(t, lines[0]["reason"], "api key not configured")
}

func TestPlanner_AISuccess(t *testing.T) {
	req := mustTrip(t, "Paris", "2024-07-01", "2024-07-02")
	gen := &stubGenerator{text: itineraryText(t, []ItineraryDay{validDay(1, "2024-07-01"), validDay(2, "2024-07-02")})}
	logger, buf := newTestLogger()
	p := NewPlanner(gen, logger)

	res := p.Itinerary(context.Background(), req)

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, "Place 1 morning", res.Days[0].Morning.Place)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Empty(t, buf.String())
	assert.Equal(t, "stub", p.Provider())
}

func TestPlanner_UpstreamFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: &UpstreamError{Provider: "stub", Status: http.StatusInternalServerError, Err: errors.New("boom")}}
	logger, buf := newTestLogger()
	p := NewPlanner(gen, logger)
	req := mustTrip(t, "Rome", "2024-05-10", "2024-05-12")

	res := p.PackingList(context.Background(), req)

	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Categories, 4)
	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "packing_list", lines[0]["pipeline"])
	assert.Contains(t, lines[0]["reason"], "upstream status 500")
}

func TestPlanner_ParseFailureFallsBack(t *testing.T) {
	req := mustTrip(t, "Rome", "2024-05-10", "2024-05-12")
	// Only one of three days: incomplete payloads are never partially used.
	gen := &stubGenerator{text: itineraryText(t, []ItineraryDay{validDay(1, "2024-05-10")})}
	logger, buf := newTestLogger()

	res := NewPlanner(gen, logger).Itinerary(context.Background(), req)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, SynthesizeItinerary(req), res.Days)
	assert.Contains(t, buf.String(), "invalid itinerary")
}

func TestPlanner_PackingListFromAI(t *testing.T) {
	gen := &stubGenerator{text: packingText(t, []PackingCategory{packingCategory("Clothing", 7), packingCategory("Documents", 6)})}
	p := NewPlanner(gen, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	res := p.PackingList(context.Background(), mustTrip(t, "Rome", "2024-05-10", "2024-05-12"))

	assert.Equal(t, SourceAI, res.Source)
	assert.Len(t, res.Categories, 2)
}

// End to end through a real HTTP client: an upstream 500 still produces a packing list.
func TestPlanner_GeminiServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	logger, _ := newTestLogger()
	p := NewPlanner(NewGeminiClient("key", "gemini-1.5-flash", srv.URL, srv.Client()), logger)

	res := p.PackingList(context.Background(), mustTrip(t, "Rome", "2024-05-10", "2024-05-12"))

	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Categories, 4)
}

func TestPlanner_GeneratorPanicUsesFallback(t *testing.T) {
	req := mustTrip(t, "Lisbon", "2024-05-01", "2024-05-02")
	logger, buf := newTestLogger()
	p := NewPlanner(&stubGenerator{panics: true}, logger)

	itin := p.Itinerary(context.Background(), req)
	pack := p.PackingList(context.Background(), req)

	assert.Equal(t, SourceFallback, itin.Source)
	assert.Equal(t, SynthesizeItinerary(req), itin.Days)
	assert.Equal(t, SourceFallback, pack.Source)
	assert.Equal(t, SynthesizePackingList(req), pack.Categories)

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0]["reason"], "generator exploded")
	assert.Equal(t, "packing_list", lines[1]["pipeline"])
}
