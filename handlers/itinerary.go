package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"roamlist/services"
)

// TripParams is the body shared by the generation and PDF routes.
type TripParams struct {
	Destination string `json:"destination" binding:"required"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
}

// bindTrip binds body and validates its trip fields, writing a 400 itself when either fails.
func bindTrip(c *gin.Context, body any, params *TripParams) (services.TripRequest, bool) {
	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return services.TripRequest{}, false
	}
	req, err := services.ParseTripRequest(params.Destination, params.StartDate, params.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return services.TripRequest{}, false
	}
	return req, true
}

// generationContext detaches the upstream call from client disconnects. The generator's own HTTP
// timeout still bounds it.
func generationContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// recoverGeneration turns a failure of the fallback path into a generic 500.
func (h *Handler) recoverGeneration(c *gin.Context, what string) {
	if r := recover(); r != nil {
		h.logger.ErrorContext(c.Request.Context(), "generation failed", "pipeline", what, "panic", fmt.Sprint(r), "request_id", requestID(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate " + what})
	}
}

func (h *Handler) GenerateItinerary(c *gin.Context) {
	var params TripParams
	req, ok := bindTrip(c, &params, &params)
	if !ok {
		return
	}
	defer h.recoverGeneration(c, "itinerary")

	res := h.planner.Itinerary(generationContext(c), req)
	c.JSON(http.StatusOK, gin.H{"itinerary": res.Days, "source": res.Source})
}

func (h *Handler) GeneratePackingList(c *gin.Context) {
	var params TripParams
	req, ok := bindTrip(c, &params, &params)
	if !ok {
		return
	}
	defer h.recoverGeneration(c, "packing list")

	res := h.planner.PackingList(generationContext(c), req)
	c.JSON(http.StatusOK, gin.H{"categories": res.Categories, "source": res.Source})
}
