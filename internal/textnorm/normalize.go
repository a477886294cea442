// Package textnorm turns raw article text into a cleaned, comparable form.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Options configures a Normalizer.
type Options struct {
	// Stopwords dropped by StripStopwords. Nil selects DefaultStopwords.
	Stopwords map[string]struct{}

	// Lemmatizer applied to each kept token. Nil selects Identity.
	Lemmatizer Lemmatizer

	// NoisePhrases searched by StripTrailingBoilerplate. Nil selects
	// DefaultNoisePhrases.
	NoisePhrases []string

	// TailFraction of lines examined for noise. Zero selects 0.30.
	TailFraction float64
}

// Normalizer cleans article text. It holds no mutable state after
// construction and is safe for concurrent use when its Lemmatizer is.
type Normalizer struct {
	stopwords    map[string]struct{}
	lemmatizer   Lemmatizer
	noise        []string
	tailFraction float64
}

var (
	linkPattern  = regexp.MustCompile(`http\S+|www\S+|\S+@\S+`)
	digitPattern = regexp.MustCompile(`[0-9]`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// New creates a Normalizer from opts.
func New(opts Options) *Normalizer {
	n := &Normalizer{
		stopwords:    opts.Stopwords,
		lemmatizer:   opts.Lemmatizer,
		tailFraction: opts.TailFraction,
	}
	if n.stopwords == nil {
		n.stopwords = DefaultStopwords()
	}
	if n.lemmatizer == nil {
		n.lemmatizer = Identity{}
	}
	if n.tailFraction <= 0 || n.tailFraction > 1 {
		n.tailFraction = 0.30
	}

	phrases := opts.NoisePhrases
	if phrases == nil {
		phrases = DefaultNoisePhrases
	}
	n.noise = make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			n.noise = append(n.noise, p)
		}
	}
	return n
}

// Normalize lower-cases raw, strips markup, links, digits and punctuation,
// collapses whitespace and transliterates to ASCII.
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(raw)
	text = stripMarkup(text)
	text = linkPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")
	text = stripPunctuation(text)
	text = collapse(text)
	text = Transliterate(text)
	// dropped characters may leave doubled spaces behind
	return collapse(text)
}

// StripStopwords drops stopword tokens and lemmatizes the rest.
func (n *Normalizer) StripStopwords(text string) string {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		kept = append(kept, n.lemmatizer.Lemma(tok))
	}
	return strings.Join(kept, " ")
}

// Clean is Normalize followed by StripStopwords.
func (n *Normalizer) Clean(raw string) string {
	return n.StripStopwords(n.Normalize(raw))
}

// WordCount returns the number of whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func stripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return -1
		}
		return r
	}, text)
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') || (r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') || (r >= '{' && r <= '~')
}

func collapse(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
