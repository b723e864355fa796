package domain

import "time"

// Book is a cataloged title with a copy-based inventory.
type Book struct {
	ID              string
	ISBN            string
	Title           string
	Subtitle        string
	TotalCopies     int
	AvailableCopies int
	IsAvailable     bool
	CreatedAt       time.Time
}
