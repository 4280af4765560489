package scheduler

import "github.com/google/uuid"

const idLength = 6

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a short random task id: 6 lowercase alphanumeric characters.
// Uniqueness is probabilistic; callers that persist ids check for collisions
// against the repository. Ids carry no creation-order information.
func NewID() string {
	raw := uuid.New()
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[int(raw[i])%len(idAlphabet)]
	}
	return string(b)
}
