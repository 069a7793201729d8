package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roamlist/services"
)

func (h *Handler) Hotels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))

	result, err := h.hotels.Search(c.Request.Context(), services.HotelQuery{
		Destination: c.Query("destination"),
		CheckIn:     c.Query("checkin"),
		CheckOut:    c.Query("checkout"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		h.listingError(c, err, "Failed to fetch hotels")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Attractions(c *gin.Context) {
	result, err := h.attractions.Find(c.Request.Context(), c.Query("destination"))
	if err != nil {
		h.listingError(c, err, "Failed to fetch attractions")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Weather(c *gin.Context) {
	req, err := services.ParseTripRequest(c.Query("destination"), c.Query("start"), c.Query("end"))
	if err != nil {
		h.listingError(c, err, "Failed to fetch weather")
		return
	}
	c.JSON(http.StatusOK, h.weather.Report(req))
}

func (h *Handler) listingError(c *gin.Context, err error, msg string) {
	if errors.Is(err, services.ErrMissingInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
