package uuid

import (
	"math/big"
	"strings"

	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7 based on the current timestamp.
// UUIDv7 is time-ordered: ids created later compare greater as strings,
// which the ledger relies on for same-day tie-breaks.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Compare orders two transaction ids. Ids written by older versions are
// millisecond timestamps; when both ids are integers they compare
// numerically. A legacy id against a UUIDv7 compares the timestamp with the
// UUID's embedded unix milliseconds. Anything else, and equal timestamps,
// compare as strings. The result is -1, 0 or +1.
func Compare(a, b string) int {
	x, aNum := new(big.Int).SetString(a, 10)
	y, bNum := new(big.Int).SetString(b, 10)
	switch {
	case aNum && bNum:
		return x.Cmp(y)
	case aNum:
		if ms, ok := UnixMilli(b); ok {
			if c := x.Cmp(big.NewInt(ms)); c != 0 {
				return c
			}
		}
	case bNum:
		if ms, ok := UnixMilli(a); ok {
			if c := big.NewInt(ms).Cmp(y); c != 0 {
				return c
			}
		}
	}
	return strings.Compare(a, b)
}

// UnixMilli returns the creation time stored in the first 48 bits of a
// UUIDv7. It reports false for anything that is not a version 7 UUID.
func UnixMilli(s string) (int64, bool) {
	id, err := googleuuid.Parse(s)
	if err != nil || id.Version() != 7 {
		return 0, false
	}
	var ms int64
	for _, b := range id[:6] {
		ms = ms<<8 | int64(b)
	}
	return ms, true
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
