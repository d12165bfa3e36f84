// Package models defines the server's persistent records.
package models

import "time"

// User is an account. Email is stored lowercased and trimmed so lookups and
// rate-limit keys agree on one spelling.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
