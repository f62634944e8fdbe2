package domain

import "time"

// RoleAdmin is the only role minted by the OTP login flow; every
// authenticated caller of the back-office API carries it.
const RoleAdmin = "admin"

// OTPEntry is a live login code for one admin email address.
// Entries exist only in process memory and there is at most one per email:
// a new request unconditionally replaces the previous entry.
type OTPEntry struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer valid at t.
func (e *OTPEntry) Expired(t time.Time) bool {
	return !t.Before(e.ExpiresAt)
}
