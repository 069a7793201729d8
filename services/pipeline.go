package services

import (
	"context"
	"fmt"
	"log/slog"
)

// Planner runs the itinerary and packing-list pipelines. It always returns a complete payload: any
// upstream or parse failure is logged and replaced by fallback content.
type Planner struct {
	gen    Generator
	logger *slog.Logger
}

// NewPlanner builds a Planner. A nil gen means no AI credential is configured.
func NewPlanner(gen Generator, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{gen: gen, logger: logger}
}

// Provider names the configured generator, or "fallback-only".
func (p *Planner) Provider() string {
	if p.gen == nil {
		return "fallback-only"
	}
	return p.gen.Name()
}

func (p *Planner) Itinerary(ctx context.Context, req TripRequest) ItineraryResult {
	days, err := attempt(func() ([]ItineraryDay, error) {
		raw, err := p.generate(ctx, BuildItineraryPrompt(req))
		if err != nil {
			return nil, err
		}
		return ExtractItinerary(raw, req)
	})
	if err == nil {
		return ItineraryResult{Days: days, Source: SourceAI}
	}

	p.fallback(ctx, "itinerary", req, err)
	return ItineraryResult{Days: SynthesizeItinerary(req), Source: SourceFallback}
}

func (p *Planner) PackingList(ctx context.Context, req TripRequest) PackingResult {
	cats, err := attempt(func() ([]PackingCategory, error) {
		raw, err := p.generate(ctx, BuildPackingPrompt(req))
		if err != nil {
			return nil, err
		}
		return ExtractPackingList(raw)
	})
	if err == nil {
		return PackingResult{Categories: cats, Source: SourceAI}
	}

	p.fallback(ctx, "packing_list", req, err)
	return PackingResult{Categories: SynthesizePackingList(req), Source: SourceFallback}
}

func (p *Planner) generate(ctx context.Context, prompt string) (string, error) {
	if p.gen == nil {
		return "", &UpstreamError{Provider: "none", Err: ErrNoCredential}
	}
	return p.gen.Generate(ctx, prompt)
}

// attempt runs the calling and extracting stages. A panic in either is reported as an error so the
// caller falls back; the synthesizer runs outside it.
func attempt[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, fmt.Errorf("generation panicked: %v", r)
		}
	}()
	return fn()
}

func (p *Planner) fallback(ctx context.Context, pipeline string, req TripRequest, reason error) {
	p.logger.WarnContext(ctx, "using fallback content",
		"pipeline", pipeline,
		"destination", req.Destination,
		"days", req.DayCount(),
		"reason", reason.Error(),
	)
}
