// Package ident generates the identifier formats used by the emulated
// service: app-client ids, pool ids, and user subs.
package ident

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/gofrs/uuid/v5"
)

const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"

// clientIDLength matches the observed length of real client ids.
const clientIDLength = 25

// randAlnum returns n cryptographically random lowercase alphanumeric chars.
func randAlnum(n int) (string, error) {
	bound := big.NewInt(int64(len(alnum)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", err
		}
		b[i] = alnum[idx.Int64()]
	}
	return string(b), nil
}

// NewClientID returns a fresh 25-character lowercase alphanumeric client id.
func NewClientID() (string, error) {
	return randAlnum(clientIDLength)
}

// NewPoolID returns a fresh pool id of the form "<region>_<9 alnum chars>".
func NewPoolID(region string) (string, error) {
	suffix, err := randAlnum(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", region, suffix), nil
}

// NewSub returns a fresh UUIDv4 for a user's sub attribute.
func NewSub() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
