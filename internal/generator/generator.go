// Package generator builds random plaintext test inputs.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/chantest/internal/model"
)

const alnum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Generator produces randomized alphanumeric plaintexts.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with seed, or with the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text returns an alphanumeric string of length n.
func (g *Generator) Text(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alnum[g.rnd.Intn(len(alnum))]
	}
	return string(buf)
}

// Inputs returns count encode-mode inputs with lengths drawn uniformly from [1, maxLen].
func (g *Generator) Inputs(count int, noiseLevel float64, maxLen int) ([]model.TestInput, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", count)
	}
	if maxLen < 1 {
		return nil, fmt.Errorf("max length must be >= 1, got %d", maxLen)
	}
	result := make([]model.TestInput, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, model.TestInput{
			Mode:       model.ModeEncode,
			NoiseLevel: noiseLevel,
			Text:       g.Text(1 + g.rnd.Intn(maxLen)),
		})
	}
	return result, nil
}
