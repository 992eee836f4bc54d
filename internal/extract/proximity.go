package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"finextract/internal/domain"
)

// DefaultWindow is the number of characters inspected on each side of a keyword occurrence.
const DefaultWindow = 250

var (
	numberRe    = regexp.MustCompile(`\d[\d,]*\.?\d*`)
	yearTokenRe = regexp.MustCompile(`(?i)\bFY[\s\-]?'?\d{2}\b|\b(?:19|20)\d{2}\b`)
)

type span struct {
	start, end int
}

type yearToken struct {
	span
	label string
}

// ProximityExtractor finds a value for a line item and fiscal year by looking for numbers
// near keyword occurrences that also mention the year. It is a best-effort heuristic:
// it never reads table structure, only nearby text.
type ProximityExtractor struct {
	window int
}

// NewProximityExtractor creates an extractor with the given window (DefaultWindow when <= 0).
func NewProximityExtractor(window int) *ProximityExtractor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ProximityExtractor{window: window}
}

// Extract returns the value for year near any of keywords, or "" when none qualifies.
func (p *ProximityExtractor) Extract(text string, keywords []string, year string) string {
	return p.extract(newHaystack(text), keywords, year)
}

// haystack keeps an ASCII-folded copy of the text with identical byte offsets.
type haystack struct {
	text  string
	lower string
}

func newHaystack(text string) *haystack {
	return &haystack{text: text, lower: asciiLower(text)}
}

func (p *ProximityExtractor) extract(h *haystack, keywords []string, year string) string {
	literal := year
	numeral := domain.YearNumeral(year)

	for _, kw := range keywords {
		needle := asciiLower(kw)
		if needle == "" {
			continue
		}
		for from := 0; from < len(h.lower); {
			idx := strings.Index(h.lower[from:], needle)
			if idx < 0 {
				break
			}
			pos := from + idx
			from = pos + 1

			start, end := p.bounds(h.text, pos)
			window := h.text[start:end]
			if !strings.Contains(window, numeral) && !strings.Contains(window, literal) {
				continue
			}

			hit := span{start: pos - start, end: pos - start + len(needle)}
			if v, ok := pickValue(window, hit, year); ok {
				return v
			}
		}
	}
	return ""
}

// bounds returns the byte range covering p.window runes on each side of pos.
func (p *ProximityExtractor) bounds(text string, pos int) (int, int) {
	start := pos
	for n := 0; n < p.window && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	end := pos
	for n := 0; n < p.window && end < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return start, end
}

// pickValue chooses a number from an accepted window.
//
// Year tokens themselves ("FY 25", "2024") are never values. Year tokens that follow the
// keyword are read inline: a value sits right before or right after its year token,
// whichever order the row uses. Otherwise the last run of year tokens before the keyword
// is a column header and the number at the year's ordinal after the keyword wins. When
// neither applies, the first qualifying number in the window is used.
func pickValue(window string, kw span, year string) (string, bool) {
	tokens := yearTokens(window)
	cands := candidates(window, tokens)
	if len(cands) == 0 {
		return "", false
	}

	var before, after []yearToken
	for _, t := range tokens {
		switch {
		case t.end <= kw.start:
			before = append(before, t)
		case t.start >= kw.end:
			after = append(after, t)
		}
	}
	var values []span
	for _, c := range cands {
		if c.start >= kw.end {
			values = append(values, c)
		}
	}

	if v, ok := pickInline(after, values, cands, year); ok {
		return window[v.start:v.end], true
	}
	if v, ok := pickHeader(before, values, cands, year); ok {
		return window[v.start:v.end], true
	}
	return window[cands[0].start:cands[0].end], true
}

// pickInline handles rows such as "FY 25 1,234 FY 24 980" and "1,234 (FY 25) 980 (FY 24)".
func pickInline(tokens []yearToken, values, cands []span, year string) (span, bool) {
	idx := -1
	for i, t := range tokens {
		if t.label == year {
			idx = i
			break
		}
	}
	if idx < 0 || len(values) == 0 {
		return span{}, false
	}
	anchor := tokens[idx]

	if values[0].start < tokens[0].start {
		lo := 0
		if idx > 0 {
			lo = tokens[idx-1].end
		}
		var pick span
		found := false
		for _, v := range values {
			if v.start >= lo && v.end <= anchor.start {
				pick, found = v, true
			}
		}
		return pick, found
	}

	for _, run := range yearRuns(tokens, cands) {
		if run[0].start > anchor.start || run[len(run)-1].end < anchor.end {
			continue
		}
		return nthAfter(run, values, year)
	}
	return span{}, false
}

// pickHeader handles tables whose year columns are named in a header line above the rows.
func pickHeader(tokens []yearToken, values, cands []span, year string) (span, bool) {
	runs := yearRuns(tokens, cands)
	if len(runs) == 0 {
		return span{}, false
	}
	return nthAfter(runs[len(runs)-1], values, year)
}

// nthAfter returns the value at year's column ordinal within run, counting only values
// that follow the run.
func nthAfter(run []yearToken, values []span, year string) (span, bool) {
	ord := -1
	seen := make(map[string]bool)
	for _, t := range run {
		if seen[t.label] {
			continue
		}
		if t.label == year {
			ord = len(seen)
			break
		}
		seen[t.label] = true
	}
	if ord < 0 {
		return span{}, false
	}

	end := run[len(run)-1].end
	for _, v := range values {
		if v.start < end {
			continue
		}
		if ord == 0 {
			return v, true
		}
		ord--
	}
	return span{}, false
}

// yearRuns splits tokens into groups with no candidate number between neighbours.
func yearRuns(tokens []yearToken, cands []span) [][]yearToken {
	var runs [][]yearToken
	for i, t := range tokens {
		if i == 0 || numberBetween(cands, tokens[i-1].end, t.start) {
			runs = append(runs, []yearToken{t})
			continue
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], t)
	}
	return runs
}

func numberBetween(cands []span, from, to int) bool {
	for _, c := range cands {
		if c.start >= from && c.end <= to {
			return true
		}
	}
	return false
}

func yearTokens(window string) []yearToken {
	locs := yearTokenRe.FindAllStringIndex(window, -1)
	tokens := make([]yearToken, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, yearToken{
			span:  span{start: loc[0], end: loc[1]},
			label: domain.NormalizeYearLabel(window[loc[0]:loc[1]]),
		})
	}
	return tokens
}

// candidates returns numeric matches with at least two digits that are not year tokens.
// Trailing separators are trimmed off each match.
func candidates(window string, tokens []yearToken) []span {
	var out []span
	for _, loc := range numberRe.FindAllStringIndex(window, -1) {
		s := span{start: loc[0], end: loc[1]}
		for s.end > s.start && (window[s.end-1] == ',' || window[s.end-1] == '.') {
			s.end--
		}
		if digitCount(window[s.start:s.end]) < 2 {
			continue
		}
		if insideToken(s, tokens) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func insideToken(s span, tokens []yearToken) bool {
	for _, t := range tokens {
		if s.start >= t.start && s.end <= t.end {
			return true
		}
	}
	return false
}

func digitCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
