// Package domain defines the data models shared across the service.
package domain

import "time"

// User is an authenticated end user of the service.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Auction is a single foreclosure auction record.
type Auction struct {
	AuctionID   string    `json:"auction_id"`
	Number      string    `json:"number"`
	Court       string    `json:"court"`
	Object      string    `json:"object"`
	Address     string    `json:"address"`
	Price       float64   `json:"price"`
	Appointment time.Time `json:"appointment"`
	Description string    `json:"description"`
	ReportURL   string    `json:"report_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
