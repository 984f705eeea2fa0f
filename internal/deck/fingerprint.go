package deck

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/flashreview/internal/domain"
)

// Normalize joins a pair's fields after trimming, lowercasing and unifying
// line endings in each of them.
func Normalize(p domain.Pair) string {
	normalizePart := func(part string) string {
		s := strings.ToLower(part)
		s = strings.TrimSpace(s)
		return strings.ReplaceAll(s, "\r\n", "\n")
	}

	// Newline-joined so "ab"+"c" and "a"+"bc" differ.
	return strings.Join([]string{
		normalizePart(p.Question),
		normalizePart(p.Answer),
		normalizePart(p.Context),
	}, "\n")
}

// Fingerprint is the hex SHA-256 of a pair's normalized form. Pairs that
// differ only in case or surrounding whitespace share a fingerprint.
func Fingerprint(p domain.Pair) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(Normalize(p))))
}
