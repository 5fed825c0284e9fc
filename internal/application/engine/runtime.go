package engine

import (
	"crypto/rand"
	"time"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// cryptoRand draws coinflips from crypto/rand. Participants cannot
// seed or predict it, which matters when real balances ride on a
// single boolean.
type cryptoRand struct{}

func (cryptoRand) Bool() bool {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return false
	}
	return b[0]&1 == 1
}
