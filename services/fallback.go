package services

import "fmt"

// activityTemplate is an Activity whose place and description take the destination name.
type activityTemplate struct {
	time, place, description, duration string
}

func (t activityTemplate) render(destination string) Activity {
	return Activity{
		Time:        t.time,
		Place:       fmt.Sprintf(t.place, destination),
		Description: fmt.Sprintf(t.description, destination),
		Duration:    t.duration,
	}
}

var morningPool = []activityTemplate{
	{"9:00 AM - 12:00 PM", "Historic %s Old Town", "Start with a guided walk through the historic heart of %s and its landmark squares.", "3 hours"},
	{"8:30 AM - 11:30 AM", "%s Central Market", "Browse the morning stalls of %s for local produce, street breakfast and crafts.", "3 hours"},
	{"9:30 AM - 12:30 PM", "%s National Museum", "Get the history of %s in one place with the museum's permanent collection.", "3 hours"},
	{"8:00 AM - 11:00 AM", "%s Botanical Garden", "Enjoy a quiet morning stroll among the gardens before %s gets busy.", "3 hours"},
}

var afternoonPool = []activityTemplate{
	{"1:00 PM - 5:00 PM", "%s Cultural Quarter", "Explore galleries, workshops and small studios in the creative side of %s.", "4 hours"},
	{"2:00 PM - 5:30 PM", "Scenic %s Viewpoint", "Head up for panoramic views over %s and the surrounding landscape.", "3.5 hours"},
	{"1:30 PM - 4:30 PM", "%s Heritage Palace", "Tour the palace halls and courtyards that shaped the story of %s.", "3 hours"},
	{"1:00 PM - 4:00 PM", "%s Riverside Promenade", "Walk the waterfront of %s with stops at cafes and local boutiques.", "3 hours"},
	{"2:00 PM - 5:00 PM", "%s Artisan Street", "Meet local makers and pick up handmade souvenirs unique to %s.", "3 hours"},
}

var eveningPool = []activityTemplate{
	{"7:00 PM - 9:30 PM", "Traditional %s Restaurant", "Dinner featuring the signature dishes of %s in a family-run restaurant.", "2.5 hours"},
	{"6:30 PM - 9:00 PM", "%s Night Food Market", "Graze through the evening food stalls and taste street food favourites of %s.", "2.5 hours"},
	{"7:30 PM - 10:00 PM", "%s Performing Arts Centre", "Catch a live music or dance performance rooted in the traditions of %s.", "2.5 hours"},
}

var localTipPool = [][]string{
	{
		"Carry some cash; smaller shops and stalls may not accept cards.",
		"Start early to beat the crowds at popular sights.",
		"Learn a few basic greetings in the local language.",
	},
	{
		"Public transport day passes are usually cheaper than single tickets.",
		"Keep a copy of your ID separate from the original.",
		"Ask locals for their favourite places to eat nearby.",
		"Check opening hours in advance; many sites close one day a week.",
	},
	{
		"Dress modestly when visiting religious or heritage sites.",
		"Stay hydrated and plan indoor breaks during the hottest hours.",
		"Agree on taxi fares before the ride or use a metered cab.",
	},
	{
		"Book popular restaurants a day ahead, especially on weekends.",
		"Keep valuables out of sight in crowded markets.",
		"Sunset is the best time for photos from viewpoints.",
		"Try the local specialty dessert at least once.",
	},
}

// SynthesizeItinerary builds one day per calendar day by cycling through the template pools.
// It has no external dependency and returns the same output for the same request.
func SynthesizeItinerary(req TripRequest) []ItineraryDay {
	n := req.DayCount()
	days := make([]ItineraryDay, n)
	for i := 0; i < n; i++ {
		tips := localTipPool[i%len(localTipPool)]
		days[i] = ItineraryDay{
			Day:       i + 1,
			Date:      req.DateOf(i + 1),
			Morning:   morningPool[i%len(morningPool)].render(req.Destination),
			Afternoon: afternoonPool[i%len(afternoonPool)].render(req.Destination),
			Evening:   eveningPool[i%len(eveningPool)].render(req.Destination),
			LocalTips: append([]string(nil), tips...),
		}
	}
	return days
}

var fallbackPacking = []struct {
	name  string
	items []string
}{
	{CategoryClothing, []string{
		"Comfortable walking shoes",
		"Light cotton t-shirts (3-4)",
		"Comfortable jeans/pants (2 pairs)",
		"Light jacket or cardigan",
		"Underwear and socks (enough for trip)",
		"Sleepwear",
		"One dressy outfit for nice dinners",
		"Swimwear (if applicable)",
		"Hat or cap for sun protection",
	}},
	{CategoryDocuments, []string{
		"Passport/ID documents",
		"Travel insurance papers",
		"Flight/train tickets (printed copies)",
		"Hotel booking confirmations",
		"Emergency contact information",
		"Copies of important documents",
		"Travel itinerary",
		"Credit cards and cash",
	}},
	{CategoryEssentials, []string{
		"Phone charger and power bank",
		"Universal travel adapter",
		"Medications and first aid kit",
		"Toiletries and personal hygiene items",
		"Sunglasses",
		"Reusable water bottle",
		"Camera or smartphone",
		"Hand sanitizer",
		"Travel pillow for comfort",
	}},
	{CategoryWeatherSpecific, []string{
		"Sunscreen SPF 30+",
		"Umbrella or rain jacket",
		"Insect repellent",
		"Light scarf for air conditioning",
		"Comfortable day backpack",
		"Weather-appropriate footwear",
		"Extra layer for temperature changes",
	}},
}

// SynthesizePackingList returns the four canonical categories with destination-agnostic items.
func SynthesizePackingList(_ TripRequest) []PackingCategory {
	out := make([]PackingCategory, len(fallbackPacking))
	for i, c := range fallbackPacking {
		out[i] = PackingCategory{
			Name:  c.name,
			Color: categoryColors[c.name],
			Items: append([]string(nil), c.items...),
		}
	}
	return out
}
