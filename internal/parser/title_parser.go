package parser

import (
	"fmt"
	"regexp"
	"strings"

	"smart-librarian/internal/models"
)

var titleRe = regexp.MustCompile(models.TitleMarkerRegex)

// SplitByTitles cuts text on the title marker. The first line after a marker
// is the title, the rest is the body. Text before the first marker and
// groups with an empty title are dropped.
func SplitByTitles(text string) []models.TitleGroup {
	parts := titleRe.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}

	var groups []models.TitleGroup
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		firstLine, rest, _ := strings.Cut(part, "\n")
		title := strings.TrimSpace(firstLine)
		if title == "" {
			continue
		}
		groups = append(groups, models.TitleGroup{
			Title: title,
			Body:  strings.TrimSpace(rest),
		})
	}
	return groups
}

// Span is a half-open range of rune offsets into a chunked body.
type Span struct {
	Start int
	End   int
}

// ChunkSpans returns the windows of a fixed-size sliding window with fixed
// overlap over n characters. Consecutive starts advance by maxChars-overlapChars.
func ChunkSpans(n, maxChars, overlapChars int) []Span {
	// Handle edge cases
	if maxChars <= 0 || n <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}
	step := maxChars - overlapChars

	var spans []Span
	for start := 0; start < n; start += step {
		end := min(start+maxChars, n)
		spans = append(spans, Span{Start: start, End: end})
		if end == n {
			break
		}
	}
	return spans
}

// chunk content into chunks with maxChars and overlapChars, dropping chunks
// that are blank after trimming
func chunkContent(content string, maxChars, overlapChars int) []string {
	runes := []rune(content)

	var chunks []string
	for _, s := range ChunkSpans(len(runes), maxChars, overlapChars) {
		chunk := strings.TrimSpace(string(runes[s.Start:s.End]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// GuessPageRange reports the pages whose text contains the first or last
// probe characters of chunk, as "n", "min-max" or "?".
func GuessPageRange(chunk string, pages []models.Page, probe int) string {
	runes := []rune(chunk)
	if len(runes) == 0 {
		return models.UnknownPageRange
	}
	head := string(runes[:min(probe, len(runes))])
	tail := string(runes[max(0, len(runes)-probe):])

	lo, hi := 0, 0
	for _, page := range pages {
		if !strings.Contains(page.Text, head) && !strings.Contains(page.Text, tail) {
			continue
		}
		if lo == 0 || page.Number < lo {
			lo = page.Number
		}
		if page.Number > hi {
			hi = page.Number
		}
	}

	switch {
	case lo == 0:
		return models.UnknownPageRange
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}
