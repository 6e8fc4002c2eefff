package domain

import "time"

type Airline struct {
	ID            int64
	Name          string
	Code          string
	ContactNumber string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
