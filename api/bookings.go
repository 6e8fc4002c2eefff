package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightapp/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	view    presenter
}

func NewBookingHandler(service booking.BookingUseCase, loc *time.Location) *BookingHandler {
	return &BookingHandler{service: service, view: presenter{loc: loc}}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/booking/:flightId", h.book)
	router.GET("/ticket/:code", h.ticket)
	router.GET("/booking/history/:email", h.history)
	router.DELETE("/booking/cancel/:code", h.cancel)
}

func (h *BookingHandler) book(c *gin.Context) {
	flightID, err := pathID(c, "flightId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req booking.BookFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, malformedBody(err))
		return
	}

	b, err := h.service.BookFlight(c.Request.Context(), flightID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Flight booked successfully. PNR: "+b.Code, h.view.booking(b))
}

func (h *BookingHandler) ticket(c *gin.Context) {
	b, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Ticket details retrieved successfully", h.view.booking(b))
}

func (h *BookingHandler) history(c *gin.Context) {
	list, err := h.service.GetHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]bookingView, 0, len(list))
	for i := range list {
		views = append(views, h.view.booking(&list[i]))
	}
	if len(views) == 0 {
		respond(c, http.StatusOK, "No bookings found for this email", views)
		return
	}
	respond(c, http.StatusOK, fmt.Sprintf("Found %d booking(s)", len(views)), views)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking cancelled successfully. PNR: "+b.Code, nil)
}
