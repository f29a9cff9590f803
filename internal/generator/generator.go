// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/avolkv/headsup/internal/model"
)

// Generator produces randomized practice text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for reproducible output.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text builds one exercise text from the word pool per the practice config.
func (g *Generator) Text(words []string, cfg model.PracticeConfig) string {
	if len(words) == 0 || cfg.Words <= 0 {
		return ""
	}
	punctSet := []rune(cfg.PunctSet)
	out := make([]string, 0, cfg.Words)
	for i := 0; i < cfg.Words; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = g.applyCaps(word, cfg.CapsPct)
		word = g.applyPunct(word, cfg.PunctPct, punctSet)
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

func (g *Generator) applyCaps(word string, capsPct float64) string {
	if capsPct <= 0 || g.rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func (g *Generator) applyPunct(word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || g.rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[g.rnd.Intn(len(punctSet))])
}
