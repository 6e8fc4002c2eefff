// Package pnr produces reservation code candidates. A code is the
// generation date as YYMMDD followed by four random characters from
// A-Z0-9. Uniqueness is the caller's job.
package pnr

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength = 4
	dateLayout   = "060102"

	Length = len(dateLayout) + suffixLength
)

type Generator struct {
	now    func() time.Time
	random io.Reader
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now, random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate() (string, error) {
	buf := make([]byte, 0, Length)
	buf = g.now().AppendFormat(buf, dateLayout)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < suffixLength; i++ {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("draw code suffix: %w", err)
		}
		buf = append(buf, alphabet[n.Int64()])
	}
	return string(buf), nil
}
