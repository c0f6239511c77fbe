package idgen

import "github.com/google/uuid"

// Generator produces identifiers for ledger records. Identifiers must be
// globally unique; a collision is a configuration fault, not a retryable one.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// UUID returns a Generator backed by random UUIDv4 strings.
func UUID() Generator {
	return uuidGenerator{}
}
