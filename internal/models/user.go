package models

import "time"

// User mirrors the upstream user document.
type User struct {
	ID         string     `json:"_id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Avatar     string     `json:"avatar,omitempty"`
	IsVerified bool       `json:"isVerified,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
