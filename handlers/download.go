package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"roamlist/services"
)

type PlanPDFRequest struct {
	TripParams
	TravelerName string `json:"travelerName"`
}

// DownloadPlanPDF runs both pipelines and streams the rendered plan as an attachment.
func (h *Handler) DownloadPlanPDF(c *gin.Context) {
	var body PlanPDFRequest
	req, ok := bindTrip(c, &body, &body.TripParams)
	if !ok {
		return
	}
	defer h.recoverGeneration(c, "PDF")

	ctx := generationContext(c)
	var (
		wg        sync.WaitGroup
		panics    [2]any
		itinerary services.ItineraryResult
		packing   services.PackingResult
	)
	run := func(i int, fn func()) {
		defer wg.Done()
		defer func() { panics[i] = recover() }()
		fn()
	}
	wg.Add(2)
	go run(0, func() { itinerary = h.planner.Itinerary(ctx, req) })
	go run(1, func() { packing = h.planner.PackingList(ctx, req) })
	wg.Wait()
	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}

	pdfBytes, err := services.RenderPlanPDF(services.PlanPDF{
		TravelerName: body.TravelerName,
		Trip:         req,
		Itinerary:    itinerary.Days,
		Packing:      packing.Categories,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "PDF generation failed", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+services.PlanPDFFilename(req.Destination)+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *Handler) Health(c *gin.Context) {
	storageStatus := "ok"
	if h.trips == nil {
		storageStatus = "not initialized"
	} else if err := h.trips.Ping(c.Request.Context()); err != nil {
		storageStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "Roamlist API",
		"storage": storageStatus,
		"backend": h.storage,
		"ai":      h.planner.Provider(),
	})
}
