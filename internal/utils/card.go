package utils

import (
	"crypto/rand"
	"fmt"
)

const cardAlphabet = "0123456789ABCDEF"

// GenerateCardNumber generates a random RFID card UID of the given
// length in hex characters.
func GenerateCardNumber(length int) (string, error) {
	if length < 8 || length > 32 {
		return "", fmt.Errorf("invalid card number length: %d", length)
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate card number: %w", err)
	}
	for i := range b {
		b[i] = cardAlphabet[int(b[i])%len(cardAlphabet)]
	}
	return string(b), nil
}
