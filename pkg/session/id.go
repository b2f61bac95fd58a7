package session

import (
	"crypto/rand"
	"math/big"
)

const sessionIDLength = 32

// newSessionID returns a random identifier.
// Entropy E = L * log2(63) = 32 * log2(63) = 191.3 bits
func newSessionID() string {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	ret := make([]byte, sessionIDLength)
	for i := range sessionIDLength {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		ret[i] = letters[num.Int64()]
	}

	return string(ret)
}
