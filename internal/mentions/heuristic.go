package mentions

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minNameLen rejects candidates shorter than this many runes.
const minNameLen = 3

// Lexical name shapes.
//
// titleRunRe finds Title-Case runs of one to five words, optionally led by
// an article or honorific ("The Cure", "DJ Shadow", "St. Vincent") or a
// stylized all-caps word ("LCD Soundsystem"), with and/&/of/the permitted
// between words ("Queens of the Stone Age"). Words may carry digits,
// apostrophes, periods and hyphens so "M83", "R.E.M." and "Jay-Z" hold
// together.
//
// allCapsRe catches stylized all-caps stage names ("MGMT", "HAIM") that the
// title-case shape cannot express. Matches contained inside a title run are
// discarded so a name is never counted twice.
var (
	titleRunRe = regexp.MustCompile(`\b(?:(?:The|A|DJ|MC|Dr|St|Sir|Lady|Lil|Big|Young|Mr|Ms)\.? +)?(?:[A-Z]{2,} +)?\p{Lu}[\p{Ll}0-9'’.-]+(?:\p{Lu}[\p{Ll}0-9'’.-]*)*(?: +(?:(?:and|&|of|the) +){0,2}\p{Lu}[\p{Ll}0-9'’.-]+(?:\p{Lu}[\p{Ll}0-9'’.-]*)*){0,4}`)
	allCapsRe  = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// leadTokens are article/honorific words a candidate may legitimately start
// with; the leading-word cleanup must not strip these.
var leadTokens = map[string]struct{}{
	"the": {}, "a": {}, "dj": {}, "mc": {}, "dr": {}, "st": {},
	"sir": {}, "lady": {}, "lil": {}, "big": {}, "young": {},
	"mr": {}, "ms": {},
}

// HeuristicExtractor implements Extractor using lexical pattern matching.
type HeuristicExtractor struct {
	influencePatterns []*regexp.Regexp
	falsePositives    map[string]struct{}
	snippetLen        int
	minSentenceLen    int
}

// NewHeuristicExtractor creates a heuristic co-mention extractor. Invalid
// influence patterns are skipped rather than failing construction.
func NewHeuristicExtractor(cfg Config) *HeuristicExtractor {
	patterns := cfg.InfluencePatterns
	if len(patterns) == 0 {
		patterns = DefaultInfluencePatterns()
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}

	fps := cfg.FalsePositives
	if len(fps) == 0 {
		fps = DefaultFalsePositives()
	}
	fpSet := make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		fpSet[Normalize(fp)] = struct{}{}
	}

	snippetLen := cfg.SnippetLen
	if snippetLen <= 0 {
		snippetLen = 200
	}
	minSentenceLen := cfg.MinSentenceLen
	if minSentenceLen <= 0 {
		minSentenceLen = 10
	}

	return &HeuristicExtractor{
		influencePatterns: compiled,
		falsePositives:    fpSet,
		snippetLen:        snippetLen,
		minSentenceLen:    minSentenceLen,
	}
}

// Extract finds co-mentions of other artists in text about subject.
func (h *HeuristicExtractor) Extract(text, subject string) []CoMention {
	subjectKey := Normalize(subject)
	subjectParts := subjectNameParts(subjectKey)

	seen := make(map[string]*CoMention)
	var order []string

	for _, sentence := range h.splitSentences(text) {
		influence := h.isInfluenceContext(sentence)

		for _, raw := range h.scan(sentence) {
			name := cleanCandidate(raw)
			if utf8.RuneCountInString(name) < minNameLen {
				continue
			}
			key := Normalize(name)
			if h.rejects(key, subjectKey, subjectParts) {
				continue
			}

			if m, ok := seen[key]; ok {
				m.Count++
				m.Influence = m.Influence || influence
				continue
			}
			seen[key] = &CoMention{
				Name:      name,
				Key:       key,
				Context:   truncate(sentence, h.snippetLen),
				Count:     1,
				Influence: influence,
			}
			order = append(order, key)
		}
	}

	out := make([]CoMention, 0, len(order))
	for _, key := range order {
		out = append(out, *seen[key])
	}
	// Stable sort keeps first-seen order among ties, so identical input
	// always yields identical output.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Influence != out[j].Influence {
			return out[i].Influence
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// splitSentences breaks text on sentence punctuation, normalizes interior
// whitespace, and drops fragments too short to carry a mention.
func (h *HeuristicExtractor) splitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.Join(strings.Fields(p), " ")
		if len(s) < h.minSentenceLen {
			continue
		}
		out = append(out, s)
	}
	return out
}

// isInfluenceContext reports whether any influence-indicator phrase matches.
func (h *HeuristicExtractor) isInfluenceContext(sentence string) bool {
	for _, re := range h.influencePatterns {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// scan returns raw name candidates from one sentence, in position order.
func (h *HeuristicExtractor) scan(sentence string) []string {
	title := titleRunRe.FindAllStringIndex(sentence, -1)
	caps := allCapsRe.FindAllStringIndex(sentence, -1)

	spans := make([][]int, 0, len(title)+len(caps))
	spans = append(spans, title...)
	for _, c := range caps {
		contained := false
		for _, t := range title {
			if c[0] >= t[0] && c[1] <= t[1] {
				contained = true
				break
			}
		}
		if !contained {
			spans = append(spans, c)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, sentence[sp[0]:sp[1]])
	}
	return out
}

// rejects applies the candidate filters: curated false positives,
// sentence-initial common words (single-word candidates only), and any
// overlap with the subject artist's name.
func (h *HeuristicExtractor) rejects(key, subjectKey string, subjectParts []string) bool {
	if key == "" {
		return true
	}
	if _, ok := h.falsePositives[key]; ok {
		return true
	}
	if !strings.Contains(key, " ") {
		if _, ok := commonWords[key]; ok {
			return true
		}
	}
	if subjectKey != "" {
		if strings.Contains(key, subjectKey) || strings.Contains(subjectKey, key) {
			return true
		}
		for _, part := range subjectParts {
			if strings.Contains(key, part) || strings.Contains(part, key) {
				return true
			}
		}
	}
	return false
}

// subjectNameParts returns the subject's whitespace-split name parts longer
// than two characters, for the substring filter.
func subjectNameParts(subjectKey string) []string {
	var parts []string
	for _, p := range strings.Fields(subjectKey) {
		if utf8.RuneCountInString(p) > 2 {
			parts = append(parts, p)
		}
	}
	return parts
}

// cleanCandidate trims a raw match into a name: drops a trailing
// possessive, trailing punctuation, and leading sentence-initial common
// words that the capitalization shape picked up by accident.
func cleanCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "'s")
	s = strings.TrimSuffix(s, "’s")
	s = strings.TrimRight(s, "'’-")

	words := strings.Fields(s)
	for len(words) > 1 {
		lead := Normalize(strings.TrimSuffix(words[0], "."))
		if _, common := commonWords[lead]; !common {
			break
		}
		if _, keep := leadTokens[lead]; keep {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// truncate bounds s to n runes, marking the cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Ensure HeuristicExtractor implements Extractor.
var _ Extractor = (*HeuristicExtractor)(nil)
