package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/service/airlines"
	"github.com/gin-gonic/gin"
)

type AirlineHandler struct {
	service airlines.AirlineUseCase
}

func NewAirlineHandler(service airlines.AirlineUseCase) *AirlineHandler {
	return &AirlineHandler{service: service}
}

func (h *AirlineHandler) Register(router *gin.RouterGroup) {
	router.POST("/airline/register", h.register)
	router.GET("/airlines", h.list)
	router.GET("/airline/:code", h.getByCode)
	router.PUT("/airline/id/:id", h.update)
	router.DELETE("/airline/id/:id", h.deactivate)
}

func (h *AirlineHandler) register(c *gin.Context) {
	var req airlines.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, malformedBody(err))
		return
	}

	airline, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Airline registered successfully", toAirlineView(airline))
}

func (h *AirlineHandler) list(c *gin.Context) {
	list, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]airlineView, 0, len(list))
	for i := range list {
		views = append(views, toAirlineView(&list[i]))
	}
	respond(c, http.StatusOK, "Airlines retrieved successfully", views)
}

func (h *AirlineHandler) getByCode(c *gin.Context) {
	airline, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", toAirlineView(airline))
}

func (h *AirlineHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req airlines.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, malformedBody(err))
		return
	}

	airline, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Airline updated successfully", toAirlineView(airline))
}

func (h *AirlineHandler) deactivate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Airline deactivated successfully", nil)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("Invalid "+name, name+": must be a positive integer")
	}
	return id, nil
}
