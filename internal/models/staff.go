package models

import "time"

// Staff represents a clinic staff member appointments may be assigned to.
type Staff struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Title     string    `db:"title" json:"title"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures listing criteria for the roster.
type StaffFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
