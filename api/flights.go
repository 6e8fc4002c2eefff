package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightapp/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	view    presenter
}

// NewFlightHandler renders flight times in loc.
func NewFlightHandler(service flights.FlightUseCase, loc *time.Location) *FlightHandler {
	return &FlightHandler{service: service, view: presenter{loc: loc}}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/airline/inventory/add", h.addInventory)
	router.POST("/search", h.search)
	router.GET("/:flightId", h.get)
}

func (h *FlightHandler) addInventory(c *gin.Context) {
	var req flights.AddFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, malformedBody(err))
		return
	}

	flight, err := h.service.AddFlightInventory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Flight inventory added successfully", h.view.flight(flight))
}

func (h *FlightHandler) search(c *gin.Context) {
	var req flights.SearchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, malformedBody(err))
		return
	}

	found, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]flightView, 0, len(found))
	for i := range found {
		views = append(views, h.view.flight(&found[i]))
	}
	if len(views) == 0 {
		respond(c, http.StatusOK, "No flights found matching your search criteria", views)
		return
	}
	respond(c, http.StatusOK, fmt.Sprintf("Found %d flight(s) matching your search", len(views)), views)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := pathID(c, "flightId")
	if err != nil {
		respondError(c, err)
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", h.view.flight(flight))
}
