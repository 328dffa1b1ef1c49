package domain

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid"
)

const orderCodePrefix = "TKT-"

// NewOrderCode returns a time-ordered code with 80 random bits, e.g. TKT-01J9Z3M6R1QK8Y7C2V4N0B5T6W.
func NewOrderCode(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return orderCodePrefix + id.String(), nil
}
