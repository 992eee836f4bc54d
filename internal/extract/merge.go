package extract

import (
	"strings"

	"finextract/internal/domain"
)

// Merge reconciles a heuristic extraction with a fallback result and returns h.
//
// Heuristic values always win: only slots holding domain.NotFound take a fallback value.
// The currency is replaced when the fallback knows it. The year list is replaced as a
// whole whenever the fallback supplies one, sorted most recent first and capped at
// DefaultMaxYears. Slots for newly introduced years start as domain.NotFound and may
// then be filled. Merging the same fallback twice changes nothing.
func Merge(h *domain.DocumentExtraction, fb *domain.FallbackResult) *domain.DocumentExtraction {
	if h == nil || fb == nil {
		return h
	}

	if c := strings.TrimSpace(fb.Currency); c != "" && !strings.EqualFold(c, domain.Unknown) {
		h.Currency = strings.ToUpper(c)
	}

	if years := normalizeYears(fb.Years); len(years) > 0 {
		h.Years = years
		h.FillMissing()
	}

	for item, values := range fb.Items {
		slots, ok := h.Items[item]
		if !ok {
			continue
		}
		for year, v := range values {
			y := domain.NormalizeYearLabel(year)
			cur, ok := slots[y]
			if !ok || cur != domain.NotFound {
				continue
			}
			if v = strings.TrimSpace(v); v == "" || strings.EqualFold(v, domain.NotFound) {
				continue
			}
			slots[y] = v
		}
	}

	h.Found = h.CountFound()
	return h
}

func normalizeYears(years []string) []string {
	seen := make(map[string]bool, len(years))
	out := make([]string, 0, len(years))
	for _, y := range years {
		y = domain.NormalizeYearLabel(y)
		if y == "" || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	domain.SortYearLabelsDesc(out)
	if len(out) > DefaultMaxYears {
		out = out[:DefaultMaxYears]
	}
	return out
}
