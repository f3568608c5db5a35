package blueprint

import (
	"strconv"
	"strings"
)

// ParsePages expands a raw page spec into an ordered page list. Specs are
// comma- or ampersand-delimited integers and hyphenated ranges; ranges run
// ascending or descending based on their endpoints, so "5-3" expands to
// [5 4 3] and "2,4-6" to [2 4 5 6]. Unparseable tokens are skipped.
func ParsePages(spec string) []int {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	norm := strings.NewReplacer("&", ",", "and", ",").Replace(strings.ToLower(spec))
	out := []int{}
	for _, part := range strings.Split(norm, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := splitRange(part); ok {
			out = append(out, expandRange(lo, hi)...)
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}

func splitRange(part string) (int, int, bool) {
	idx := strings.Index(part, "-")
	if idx <= 0 || idx == len(part)-1 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(part[:idx]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
	if err1 != nil || err2 != nil || lo <= 0 || hi <= 0 {
		return 0, 0, false
	}
	return lo, hi, true
}

func expandRange(lo, hi int) []int {
	out := []int{}
	if lo <= hi {
		for p := lo; p <= hi; p++ {
			out = append(out, p)
		}
		return out
	}
	for p := lo; p >= hi; p-- {
		out = append(out, p)
	}
	return out
}
