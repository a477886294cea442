package textnorm

import (
	"math"
	"strings"
)

// DefaultNoisePhrases mark the start of trailing promotional text.
var DefaultNoisePhrases = []string{
	"subscribe",
	"newsletter promotion",
	"sign up to",
	"sign up for",
	"follow us on",
	"read more:",
	"all rights reserved",
	"click here",
	"related articles",
	"more on this story",
}

// StripTrailingBoilerplate truncates raw at the first line, within the
// trailing window, that contains a noise phrase. It works on whole lines
// of the raw text and must run before Normalize.
func (n *Normalizer) StripTrailingBoilerplate(raw string) string {
	if raw == "" || len(n.noise) == 0 {
		return raw
	}
	lines := strings.Split(raw, "\n")

	window := int(math.Ceil(float64(len(lines))*n.tailFraction - 1e-9))
	if window < 1 {
		window = 1
	}
	start := len(lines) - window

	for i := start; i < len(lines); i++ {
		lower := strings.ToLower(lines[i])
		for _, phrase := range n.noise {
			if strings.Contains(lower, phrase) {
				return strings.Join(lines[:i], "\n")
			}
		}
	}
	return raw
}
