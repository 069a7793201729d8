// Package handlers exposes the planner, listings and saved trips over gin.
package handlers

import (
	"log/slog"

	"roamlist/database"
	"roamlist/services"
)

// Handler carries the services every route needs. Build it once in main and register its methods.
type Handler struct {
	planner     *services.Planner
	trips       database.TripStore
	storage     string
	hotels      *services.HotelFinder
	attractions *services.AttractionFinder
	weather     *services.WeatherService
	logger      *slog.Logger
}

type Deps struct {
	Planner     *services.Planner
	Trips       database.TripStore
	Storage     string
	Hotels      *services.HotelFinder
	Attractions *services.AttractionFinder
	Weather     *services.WeatherService
	Logger      *slog.Logger
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		planner:     d.Planner,
		trips:       d.Trips,
		storage:     d.Storage,
		hotels:      d.Hotels,
		attractions: d.Attractions,
		weather:     d.Weather,
		logger:      d.Logger,
	}
}
