// Package mentions extracts candidate artist co-mentions from review text
// using lexical heuristics. Extraction is deliberately approximate: it looks
// for capitalized name shapes near influence language rather than doing real
// named-entity recognition. The Extractor interface is the seam for swapping
// in a more precise implementation later.
package mentions

import "strings"

// CoMention is a second artist's name found in text about a subject artist.
type CoMention struct {
	// Name is the display form as first seen in the text.
	Name string `json:"name"`

	// Key is the normalized form used for deduplication and matching.
	Key string `json:"key"`

	// Context is the first sentence the name appeared in, truncated.
	Context string `json:"context,omitempty"`

	// Count is how many times the name occurred across the text.
	Count int `json:"count"`

	// Influence is true when any containing sentence matched an
	// influence-indicator phrase ("influenced by", "sounds like", ...).
	Influence bool `json:"influence"`
}

// Extractor extracts co-mentions of other artists from text about a subject.
type Extractor interface {
	// Extract returns co-mentions found in text, sorted by influence
	// context first, then occurrence count. The subject artist is never
	// returned. Identical input always yields identical output.
	Extract(text, subject string) []CoMention
}

// Config holds heuristic extraction configuration. The pattern and
// false-positive sets ship with curated defaults and can be overridden
// from the config file.
type Config struct {
	// InfluencePatterns are case-insensitive regexes marking a sentence
	// as influence context. Invalid patterns are skipped.
	InfluencePatterns []string `koanf:"influence_patterns" json:"influence_patterns,omitempty"`

	// FalsePositives are normalized names to reject outright: generic
	// music phrases, cities, publications, platforms.
	FalsePositives []string `koanf:"false_positives" json:"false_positives,omitempty"`

	// SnippetLen bounds the context snippet, in runes.
	SnippetLen int `koanf:"snippet_len" json:"snippet_len,omitempty"`

	// MinSentenceLen drops sentence fragments shorter than this.
	MinSentenceLen int `koanf:"min_sentence_len" json:"min_sentence_len,omitempty"`
}

// DefaultConfig returns the curated default extraction configuration.
func DefaultConfig() Config {
	return Config{
		InfluencePatterns: DefaultInfluencePatterns(),
		FalsePositives:    DefaultFalsePositives(),
		SnippetLen:        200,
		MinSentenceLen:    10,
	}
}

// Normalize returns the key form of a name: lowercased, trimmed, with
// internal whitespace collapsed to single spaces.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
