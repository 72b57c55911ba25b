// Package masking hides long opaque tokens (keys, hashes, session ids) that
// test runners sometimes echo into failure details.
package masking

import (
	"strings"
	"unicode/utf8"
)

// Default policy values.
const (
	DefaultMinLength    = 30
	DefaultVisible      = 4
	DefaultExemptPrefix = "http"
)

// Policy decides which whitespace separated tokens get masked.
// A token is masked when it is strictly longer than MinLength runes and does
// not start with ExemptPrefix. The first Visible runes are kept and every
// remaining rune becomes '*'.
type Policy struct {
	MinLength    int
	Visible      int
	ExemptPrefix string
}

// DefaultPolicy returns the production masking policy.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:    DefaultMinLength,
		Visible:      DefaultVisible,
		ExemptPrefix: DefaultExemptPrefix,
	}
}

// Mask applies the default policy.
func Mask(text string) string {
	return DefaultPolicy().Mask(text)
}

// Mask returns text with long tokens masked. Tokens are rejoined with a
// single space, so runs of whitespace collapse.
func (p Policy) Mask(text string) string {
	out, _ := p.Apply(text)
	return out
}

// Apply is Mask that also reports how many tokens were masked.
func (p Policy) Apply(text string) (string, int) {
	if text == "" {
		return "", 0
	}

	tokens := strings.Fields(text)
	masked := 0
	for i, tok := range tokens {
		if !p.shouldMask(tok) {
			continue
		}
		tokens[i] = p.maskToken(tok)
		masked++
	}
	return strings.Join(tokens, " "), masked
}

func (p Policy) shouldMask(tok string) bool {
	if utf8.RuneCountInString(tok) <= p.MinLength {
		return false
	}
	if p.ExemptPrefix != "" && strings.HasPrefix(tok, p.ExemptPrefix) {
		return false
	}
	return true
}

func (p Policy) maskToken(tok string) string {
	visible := p.Visible
	if visible < 0 {
		visible = 0
	}
	runes := []rune(tok)
	if len(runes) <= visible {
		return tok
	}
	return string(runes[:visible]) + strings.Repeat("*", len(runes)-visible)
}
