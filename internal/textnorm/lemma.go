package textnorm

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a lower-case token to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Identity returns tokens unchanged.
type Identity struct{}

func (Identity) Lemma(word string) string { return word }

// NewEnglishLemmatizer loads the English golem dictionary. Loading takes a
// moment, so build it once per process and share it.
func NewEnglishLemmatizer() (Lemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}
	return l, nil
}

// NewLemmatizer selects a lemmatizer by name: "golem" or "none".
func NewLemmatizer(name string) (Lemmatizer, error) {
	switch name {
	case "", "golem":
		return NewEnglishLemmatizer()
	case "none":
		return Identity{}, nil
	}
	return nil, fmt.Errorf("unknown lemmatizer %q", name)
}
