package paste

import "github.com/jaevor/go-nanoid"

// idAlphabet matches the ids the service has always produced: digits plus
// lower- and uppercase ASCII letters, nothing URL-hostile.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IDGenerator produces candidate ids. Uniqueness is not its job; the Store
// retries against the repository until an unused id is found.
type IDGenerator func() string

// NewIDGenerator returns a generator for random ids of the given length.
// Lengths outside nanoid's supported range are a configuration error.
func NewIDGenerator(length int) (IDGenerator, error) {
	gen, err := nanoid.CustomASCII(idAlphabet, length)
	if err != nil {
		return nil, err
	}

	return IDGenerator(gen), nil
}
