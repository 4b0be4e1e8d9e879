package service

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// randIntN is swappable in tests for deterministic codes.
var randIntN = rand.Intn

// GenerateTeacherCode produces a shareable code of the form XXXX-NNNN: the
// subject upper-cased, stripped of non-letters, and truncated or padded with
// X to exactly four letters, followed by a uniform four-digit number.
//
// The generator does not check uniqueness; the unique index on the users
// table enforces it, and signup retries on a collision.
func GenerateTeacherCode(subject string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(subject) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else if unicode.IsLetter(r) {
			// Non-ASCII letters map to X to keep the code typeable.
			b.WriteRune('X')
		}
		if b.Len() == 4 {
			break
		}
	}
	prefix := b.String()
	for len(prefix) < 4 {
		prefix += "X"
	}

	return fmt.Sprintf("%s-%d", prefix, 1000+randIntN(9000))
}
