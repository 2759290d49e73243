package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. ULIDs sort by creation time, which keeps
// meeting and message ids roughly chronological in the database.
func New() string {
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
