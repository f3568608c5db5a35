// Package allocator assigns source-summary paragraphs to blueprint blocks by
// lexical overlap, discouraging (but not forbidding) paragraph reuse.
package allocator

import (
	"sort"
	"strings"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const (
	keywordScore       = 1.0
	titleScore         = 1.5
	reusePenalty       = 0.35
	paragraphsPerBlock = 2
)

// Allocate returns one context string per block, in block order. An empty
// summary degrades to a keyword hint line per block.
func Allocate(summary string, blocks []types.BlueprintBlock) []string {
	out := make([]string, len(blocks))
	paragraphs := splitParagraphs(summary)
	if len(paragraphs) == 0 {
		for i, b := range blocks {
			out[i] = hintLine(b.Keywords)
		}
		return out
	}

	used := make([]bool, len(paragraphs))
	for i, b := range blocks {
		chosen := pickParagraphs(paragraphs, used, b, i)
		parts := make([]string, 0, len(chosen)+1)
		for _, idx := range chosen {
			parts = append(parts, paragraphs[idx])
			used[idx] = true
		}
		if hint := hintLine(b.Keywords); hint != "" {
			parts = append(parts, hint)
		}
		out[i] = strings.Join(parts, "\n\n")
	}
	return out
}

func pickParagraphs(paragraphs []string, used []bool, b types.BlueprintBlock, blockIndex int) []int {
	type scored struct {
		idx   int
		score float64
	}
	title := strings.ToLower(strings.TrimSpace(b.Title))
	arr := make([]scored, 0, len(paragraphs))
	for idx, p := range paragraphs {
		lower := strings.ToLower(p)
		s := 0.0
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				s += keywordScore
			}
		}
		if title != "" && strings.Contains(lower, title) {
			s += titleScore
		}
		if used[idx] {
			s *= reusePenalty
		}
		arr = append(arr, scored{idx: idx, score: s})
	}
	sort.SliceStable(arr, func(i, j int) bool { return arr[i].score > arr[j].score })

	chosen := []int{}
	for _, sc := range arr {
		if sc.score <= 0 || len(chosen) >= paragraphsPerBlock {
			break
		}
		chosen = append(chosen, sc.idx)
	}
	if len(chosen) > 0 {
		return chosen
	}
	// Nothing scored: take the first unused paragraph, or cycle by index
	// when every paragraph has been handed out already.
	for idx := range paragraphs {
		if !used[idx] {
			return []int{idx}
		}
	}
	return []int{blockIndex % len(paragraphs)}
}

func splitParagraphs(summary string) []string {
	out := []string{}
	for _, p := range strings.Split(strings.ReplaceAll(summary, "\r\n", "\n"), "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hintLine(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	return "Key topics to emphasise: " + strings.Join(keywords, ", ")
}
