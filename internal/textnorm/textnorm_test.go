package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type suffixLemmatizer struct{}

func (suffixLemmatizer) Lemma(word string) string { return strings.TrimSuffix(word, "s") }

func TestNormalize(t *testing.T) {
	n := New(Options{})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"case and punctuation", "Hello, World!", "hello world"},
		{"digits", "In 2025 there were 3 cases", "in there were cases"},
		{"links and emails", "see https://example.com/a or www.bbc.co.uk, mail me@x.org now", "see or mail now"},
		{"markup", "<p>Breaking <b>news</b></p><script>var x = 1;</script>", "breaking news"},
		{"whitespace", "  a \t\n  b  ", "a b"},
		{"transliteration", "Café naïve Straße", "cafe naive strasse"},
		{"no ascii equivalent", "peace 和平 now", "peace now"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	n := New(Options{})
	in := "The Prime Minister's “surprise” visit — 12 March, 2025."
	once := n.Normalize(in)
	assert.Equal(t, once, n.Normalize(once))
}

func TestStripStopwords(t *testing.T) {
	n := New(Options{Lemmatizer: suffixLemmatizer{}})
	got := n.StripStopwords("the ministers are meeting with the leaders")
	assert.Equal(t, "minister meeting leader", got)

	assert.Equal(t, "", n.StripStopwords(""))
}

func TestStripStopwordsCustomSet(t *testing.T) {
	n := New(Options{Stopwords: StopwordSet([]string{"Foo"})})
	assert.Equal(t, "the bar", n.StripStopwords("the foo bar"))
}

func TestStripTrailingBoilerplate(t *testing.T) {
	n := New(Options{})

	lines := []string{"one", "two", "three", "four", "five", "six", "seven", "Subscribe to our newsletter", "nine", "ten"}
	got := n.StripTrailingBoilerplate(strings.Join(lines, "\n"))
	assert.Equal(t, strings.Join(lines[:7], "\n"), got)
}

func TestStripTrailingBoilerplateOnlyScansTail(t *testing.T) {
	n := New(Options{})

	// the phrase sits in the first 70% of lines and must be left alone
	lines := []string{"Click here for context", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	in := strings.Join(lines, "\n")
	assert.Equal(t, in, n.StripTrailingBoilerplate(in))
}

func TestStripTrailingBoilerplateSingleLine(t *testing.T) {
	n := New(Options{})
	assert.Equal(t, "", n.StripTrailingBoilerplate("Sign up for our daily briefing"))
	assert.Equal(t, "plain text", n.StripTrailingBoilerplate("plain text"))
}

func TestStripTrailingBoilerplateCustomPhrases(t *testing.T) {
	n := New(Options{NoisePhrases: []string{"ADVERTISEMENT"}, TailFraction: 0.5})
	got := n.StripTrailingBoilerplate("a\nb\nc\nadvertisement below")
	assert.Equal(t, "a\nb\nc", got)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 60, WordCount(strings.Repeat("word ", 60)))
	assert.Equal(t, 0, WordCount("   "))
}

func TestNewLemmatizer(t *testing.T) {
	l, err := NewLemmatizer("none")
	assert.NoError(t, err)
	assert.Equal(t, "running", l.Lemma("running"))

	_, err = NewLemmatizer("porter")
	assert.Error(t, err)
}

func TestKeywords(t *testing.T) {
	n := New(Options{})
	text := "Floods hit the valley. The floods closed roads; rescue teams reached the valley at dawn. Floods again."

	got := n.Keywords(text, 3)
	assert.Equal(t, []string{"floods", "valley", "hit"}, got)

	assert.Nil(t, n.Keywords(text, 0))
	assert.Empty(t, n.Keywords("the and of", 5))
}
