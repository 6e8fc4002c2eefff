package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightapp/internal/kafka"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender renders booking notifications. Delivery is a log line; there is
// no SMTP transport.
type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	msg, err := Render(event)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"to":       msg.To,
		"subject":  msg.Subject,
		"code":     event.Code,
		"event_id": event.EventID,
	}).Info("booking notification sent")
	return nil
}

func Render(event kafka.BookingEvent) (Message, error) {
	if event.Email == "" {
		return Message{}, fmt.Errorf("booking event %s has no recipient", event.EventID)
	}

	var subject, intro string
	switch event.Type {
	case kafka.EventBookingConfirmed:
		subject = fmt.Sprintf("Booking confirmed. PNR: %s", event.Code)
		intro = "Your booking is confirmed."
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking cancelled. PNR: %s", event.Code)
		intro = "Your booking has been cancelled and the seats released."
	default:
		return Message{}, fmt.Errorf("unsupported booking event type %q", event.Type)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n%s\n\n", event.ContactName, intro)
	fmt.Fprintf(&b, "PNR:       %s\n", event.Code)
	fmt.Fprintf(&b, "Flight:    %s\n", event.FlightNumber)
	fmt.Fprintf(&b, "Departure: %s\n", event.DepartureTime.Format("02 Jan 2006 15:04 MST"))
	fmt.Fprintf(&b, "Seats:     %s\n", strings.Join(event.Seats, ", "))
	fmt.Fprintf(&b, "Total:     %s\n", event.TotalAmount)

	return Message{To: event.Email, Subject: subject, Body: b.String()}, nil
}
