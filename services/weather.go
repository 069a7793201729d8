package services

import "strings"

type CurrentWeather struct {
	Temp      int    `json:"temp"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
	Humidity  int    `json:"humidity"`
	WindSpeed int    `json:"windSpeed"`
}

type DailyForecast struct {
	Date      string `json:"date"`
	Temp      int    `json:"temp"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
	Humidity  int    `json:"humidity"`
}

type WeatherReport struct {
	Current  CurrentWeather  `json:"current"`
	Forecast []DailyForecast `json:"forecast"`
}

var weatherConditions = []struct{ condition, icon string }{
	{"Sunny", "sunny"},
	{"Cloudy", "cloudy"},
	{"Partly Cloudy", "partly-cloudy"},
	{"Light Rain", "rainy"},
}

// WeatherService produces synthetic conditions for a trip. There is no live weather provider.
type WeatherService struct {
	seed int64
}

func NewWeatherService(seed int64) *WeatherService {
	return &WeatherService{seed: seed}
}

// Report returns current conditions plus one forecast entry per trip day. The same trip and seed
// always produce the same report.
func (s *WeatherService) Report(req TripRequest) WeatherReport {
	r := seededRand(s.seed, "weather", strings.ToLower(req.Destination), req.StartString(), req.EndString())

	report := WeatherReport{
		Current: CurrentWeather{
			Temp:      20 + r.IntN(15),
			Condition: "Partly Cloudy",
			Icon:      "partly-cloudy",
			Humidity:  50 + r.IntN(30),
			WindSpeed: 5 + r.IntN(15),
		},
		Forecast: make([]DailyForecast, req.DayCount()),
	}
	for i := range report.Forecast {
		c := weatherConditions[r.IntN(len(weatherConditions))]
		report.Forecast[i] = DailyForecast{
			Date:      req.DateOf(i + 1),
			Temp:      18 + r.IntN(15),
			Condition: c.condition,
			Icon:      c.icon,
			Humidity:  40 + r.IntN(40),
		}
	}
	return report
}
