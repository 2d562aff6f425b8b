package utils

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRandomID returns a new unique, lexically sortable id.
func NewRandomID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// NewID returns a deterministic id from the given seed. Test helper.
func NewID(seed int64) string {
	src := mrand.New(mrand.NewSource(seed))
	return ulid.MustNew(uint64(seed)%ulid.MaxTime(), src).String()
}

// IsValidID reports whether the given string is an id we could have minted.
func IsValidID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// NewWorkerName returns a unique worker name that embeds the host identity,
// so an operator can tell where a worker ran from its name alone.
func NewWorkerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	host = strings.ReplaceAll(host, "@", "-")
	return fmt.Sprintf("%s@%s", host, NewRandomID())
}
