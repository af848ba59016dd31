package ledger

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const (
	referenceAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceSuffixLen = 6
)

// NewReference builds a human-traceable movement reference of the form
// {3-letter category prefix}-{base36 millisecond timestamp}-{6-char random
// suffix}, upper-cased. The generator is collision-resistant but not a
// uniqueness guarantee; the store's unique index on reference is the backstop
// and the executor regenerates on a duplicate.
func NewReference(category Category) string {
	prefix := strings.ToUpper(string(category))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, referenceSuffixLen)
	if _, err := rand.Read(suffix); err != nil {
		// fall back to nanosecond jitter so generation never errors
		ns := time.Now().UnixNano()
		for i := range suffix {
			suffix[i] = byte(ns >> (i * 8))
		}
	}
	for i, b := range suffix {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}

	return prefix + "-" + ts + "-" + string(suffix)
}
