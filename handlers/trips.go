package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roamlist/database"
)

func (h *Handler) ListTrips(c *gin.Context) {
	userID, _ := UserID(c)

	trips, err := h.trips.ListByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *Handler) CreateTrip(c *gin.Context) {
	userID, _ := UserID(c)

	var params TripParams
	req, ok := bindTrip(c, &params, &params)
	if !ok {
		return
	}

	trip, err := h.trips.Create(c.Request.Context(), database.Trip{
		UserID:      userID,
		Destination: req.Destination,
		StartDate:   req.StartString(),
		EndDate:     req.EndString(),
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save trip"})
		return
	}
	h.logger.InfoContext(c.Request.Context(), "trip saved", "trip_id", trip.ID, "request_id", requestID(c))
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func (h *Handler) DeleteTrip(c *gin.Context) {
	userID, _ := UserID(c)

	err := h.trips.Delete(c.Request.Context(), c.Param("id"), userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
