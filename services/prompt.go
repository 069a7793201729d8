package services

import (
	"fmt"
	"strings"
)

// BuildItineraryPrompt asks for a day-by-day plan and embeds the exact JSON shape ExtractItinerary accepts.
func BuildItineraryPrompt(req TripRequest) string {
	days := req.DayCount()

	var b strings.Builder
	fmt.Fprintf(&b, "You are a local travel expert. Create a detailed %d-day travel itinerary for %s from %s to %s.\n\n",
		days, req.Destination, req.StartString(), req.EndString())

	b.WriteString("For each day, provide:\n")
	b.WriteString("1. A morning, an afternoon and an evening activity, each with a time range, a specific place, a short description and a duration\n")
	b.WriteString("2. Exactly 3 or 4 practical local tips for that day\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- The three activities of a day must be at three different, specific, real places (no generic names like \"a museum\").\n")
	b.WriteString("- No place may appear on more than one day.\n")
	fmt.Fprintf(&b, "- Return exactly %d days, numbered 1 to %d, with consecutive dates starting at %s.\n", days, days, req.StartString())
	b.WriteString("- Respond with the JSON object only, no explanations.\n\n")

	b.WriteString("Use exactly this JSON structure:\n")
	fmt.Fprintf(&b, `{
  "itinerary": [
    {
      "day": 1,
      "date": "%s",
      "morning": {"time": "9:00 AM - 12:00 PM", "place": "Specific place name", "description": "What to do there", "duration": "3 hours"},
      "afternoon": {"time": "1:00 PM - 5:00 PM", "place": "Another specific place", "description": "What to do there", "duration": "4 hours"},
      "evening": {"time": "7:00 PM - 9:30 PM", "place": "A third specific place", "description": "What to do there", "duration": "2.5 hours"},
      "localTips": ["Tip 1", "Tip 2", "Tip 3"]
    }
  ]
}`, req.StartString())
	fmt.Fprintf(&b, "\n\nFocus on the most popular and highly-rated places in %s, authentic food and realistic timing.", req.Destination)

	return b.String()
}

// BuildPackingPrompt asks for the four canonical packing categories tailored to the destination and season.
func BuildPackingPrompt(req TripRequest) string {
	days := req.DayCount()
	s := season(req.StartDate)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a personalized packing list for a %d-day trip to %s from %s to %s (%s season).\n\n",
		days, req.Destination, req.StartString(), req.EndString(), s)

	b.WriteString("Consider:\n")
	fmt.Fprintf(&b, "- Weather conditions in %s during %s\n", req.Destination, s)
	fmt.Fprintf(&b, "- Trip duration (%d days)\n", days)
	fmt.Fprintf(&b, "- Local activities and culture in %s\n", req.Destination)
	b.WriteString("- Practical travel needs\n\n")

	b.WriteString("Organize items into exactly these categories:\n")
	b.WriteString("1. Clothing (weather-appropriate, versatile pieces)\n")
	b.WriteString("2. Documents (travel essentials, identification)\n")
	b.WriteString("3. Essentials (health, hygiene, electronics)\n")
	b.WriteString("4. Weather-Specific (season and destination specific items)\n\n")

	b.WriteString("Respond with the JSON object only, using exactly this structure:\n")
	b.WriteString("{\n  \"categories\": [\n")
	names := []string{CategoryClothing, CategoryDocuments, CategoryEssentials, CategoryWeatherSpecific}
	for i, name := range names {
		fmt.Fprintf(&b, "    {\"name\": %q, \"color\": %q, \"items\": [\"Item 1\", \"Item 2\", \"...\"]}", name, categoryColors[name])
		if i < len(names)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}\n\n")
	fmt.Fprintf(&b, "Make recommendations specific to %s's climate, culture, and typical activities. Include 6-10 items per category.", req.Destination)

	return b.String()
}
