package services

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"prizewheel/models"
)

var errNoSegments = errors.New("no prize segments to draw from")

// Drawer picks the winning segment index
type Drawer interface {
	Draw(segments []models.PrizeSegment) (int, error)
}

// CryptoDrawer draws uniformly over segments from a cryptographic source
type CryptoDrawer struct {
	Reader io.Reader
}

func (d CryptoDrawer) Draw(segments []models.PrizeSegment) (int, error) {
	if len(segments) == 0 {
		return 0, errNoSegments
	}
	reader := d.Reader
	if reader == nil {
		reader = rand.Reader
	}
	n, err := rand.Int(reader, big.NewInt(int64(len(segments))))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// FixedDrawer always lands on Index
type FixedDrawer struct {
	Index int
}

func (d FixedDrawer) Draw(segments []models.PrizeSegment) (int, error) {
	if len(segments) == 0 {
		return 0, errNoSegments
	}
	return d.Index % len(segments), nil
}
