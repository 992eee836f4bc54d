package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// NotFound marks an (item, year) slot without a value.
	NotFound = "Not Found"
	// Unknown is the currency and year placeholder when nothing was detected.
	Unknown = "Unknown"

	fyPrefix = "FY "
)

var (
	fyShortLabelRe = regexp.MustCompile(`(?i)^FY[\s\-]*'?(\d{2})$`)
	fyLongLabelRe  = regexp.MustCompile(`(?i)^(?:FY[\s\-]*)?((?:19|20)\d{2})$`)
)

// ResolveTwoDigitYear maps a two-digit fiscal year onto a calendar year.
// Values below 50 belong to the 2000s, the rest to the 1900s.
func ResolveTwoDigitYear(n int) int {
	if n < 50 {
		return 2000 + n
	}
	return 1900 + n
}

// FYLabel renders a two-digit capture as a fiscal-year label, e.g. "25" -> "FY 25".
func FYLabel(twoDigits string) string {
	return fyPrefix + twoDigits
}

// YearNumeral strips the "FY " prefix from a label: "FY 25" -> "25", "2024" -> "2024".
func YearNumeral(label string) string {
	return strings.ReplaceAll(label, fyPrefix, "")
}

// ResolveYear returns the calendar year a label stands for.
// The boolean is false for labels such as "Unknown".
func ResolveYear(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if m := fyShortLabelRe.FindStringSubmatch(label); m != nil {
		n, _ := strconv.Atoi(m[1])
		return ResolveTwoDigitYear(n), true
	}
	if m := fyLongLabelRe.FindStringSubmatch(label); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

// NormalizeYearLabel rewrites loosely formatted labels ("FY25", "fy-'25", "FY 2025")
// into the canonical "FY nn" or "YYYY" forms. Unrecognized input is returned trimmed.
func NormalizeYearLabel(label string) string {
	label = strings.TrimSpace(label)
	if m := fyShortLabelRe.FindStringSubmatch(label); m != nil {
		return FYLabel(m[1])
	}
	if m := fyLongLabelRe.FindStringSubmatch(label); m != nil {
		return m[1]
	}
	return label
}

// SortYearLabelsDesc orders labels most recent first by resolved year.
// Unresolvable labels sort last; ties break on the label text, descending.
func SortYearLabelsDesc(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		yi, oki := ResolveYear(labels[i])
		yj, okj := ResolveYear(labels[j])
		switch {
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		case yi != yj:
			return yi > yj
		default:
			return labels[i] > labels[j]
		}
	})
}
