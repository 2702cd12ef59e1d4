// Package id generates prefixed, time-ordered unique IDs.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// randLength is the random suffix length. Shorter than the nanoid default
// because the timestamp prefix already carries most of the uniqueness.
const randLength = 12

// Generate creates a prefixed unique ID of the form prefix-timestamp-nanoid,
// e.g. "bm-0swv8m2k1x-V1StGXR8_Z5j".
//
// The millisecond timestamp is encoded base36 and zero-padded, so IDs with
// the same prefix sort lexicographically by creation time. Search pagination
// depends on this: (score, id) tie-breaks are only deterministic if newer
// bookmarks always compare higher.
//
// Returns an error if the system has insufficient entropy for secure random
// generation.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New(randLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	// Pad to 10 chars; base36 millis stay under 10 digits for millennia.
	for len(ts) < 10 {
		ts = "0" + ts
	}
	return prefix + "-" + ts + "-" + suffix, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when failure should crash the program (e.g., during
// initialization or seeding).
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
