package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/scythe504/quizrush-backend/internal"
)

// Session codes skip ambiguous characters (0/O, 1/I/L) since players share
// them verbally.
const sessionCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateSessionCode returns a human-shareable uppercase code of length n.
func GenerateSessionCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(sessionCodeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms
			idx = big.NewInt(0)
		}
		b.WriteByte(sessionCodeAlphabet[idx.Int64()])
	}
	return b.String()
}

// NewPlayerId returns a fresh opaque player identifier.
func NewPlayerId() string {
	return uuid.NewString()
}

// NormalizeGuess prepares a guess or answer for comparison: surrounding
// whitespace trimmed, case folded.
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeName trims a display name; empty result means invalid. Truncation
// counts runes so a multi-byte name never becomes invalid UTF-8 on the wire.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > internal.MaxNameLength {
		name = string([]rune(name)[:internal.MaxNameLength])
	}
	return name
}
