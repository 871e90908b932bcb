// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// User is a staff member that cases can be attributed to. Authentication
// is handled outside this service; only the identity is stored here.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
