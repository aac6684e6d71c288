package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Unambiguous alphabet: no 0/O or 1/I.
const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewBookingReference returns a short code clients can quote, e.g. "TW-7XK2P9Q".
func NewBookingReference() string {
	id, err := gonanoid.Generate(referenceAlphabet, 7)
	if err != nil {
		return ""
	}
	return "TW-" + id
}
