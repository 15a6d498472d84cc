package game

import (
	"crypto/rand"
	"strings"
)

// PIN alphabet excludes nothing: 4-6 uppercase alphanumerics per the wire
// contract, always normalized to uppercase before lookup or write.
const pinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const pinLength = 6

// NewPIN generates a random game PIN.
func NewPIN() string {
	b := make([]byte, pinLength)
	rand.Read(b)
	for i := range b {
		b[i] = pinAlphabet[int(b[i])%len(pinAlphabet)]
	}
	return string(b)
}

// NormalizePIN uppercases and trims a PIN for case-insensitive lookup.
func NormalizePIN(pin string) string {
	return strings.ToUpper(strings.TrimSpace(pin))
}

// ValidPIN reports whether pin is 4-6 uppercase alphanumeric characters.
func ValidPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if !strings.ContainsRune(pinAlphabet, rune(pin[i])) {
			return false
		}
	}
	return true
}
