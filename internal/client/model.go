package client

import "time"

// Client is a tenant organisation owning one or more accounts.
type Client struct {
	ID        string
	Name      string
	Address   string
	City      string
	State     string
	Country   string
	Zipcode   string
	CreatedAt time.Time
}
