// Package domain defines the one-time code returned for vault items that carry a TOTP seed.
package domain

// Period is the length in seconds of one code window.
const Period = 30

// Digits is the number of decimal digits in a code.
const Digits = 6

// Code is a time-windowed one-time code. The zero value means no seed is configured.
type Code struct {
	Code             string `json:"code"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// Configured reports whether c holds a real code.
func (c Code) Configured() bool {
	return c.Code != ""
}
