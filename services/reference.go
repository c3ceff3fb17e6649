package services

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Unambiguous alphabet for codes read aloud at a counter
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReferenceNumber returns a code such as PW-7KQ2-M9XD
func NewReferenceNumber() (string, error) {
	max := big.NewInt(int64(len(referenceAlphabet)))
	var b strings.Builder
	b.WriteString("PW-")
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String(), nil
}
