package safety

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const ModerationReason = "moderation service flagged the text."

// Moderator classifies text as policy-violating or not.
type Moderator interface {
	Flagged(ctx context.Context, text string) (bool, error)
}

// Result is the outcome of a safety check.
type Result struct {
	Blocked bool
	Reasons []string
}

type Filter struct {
	words     []string
	moderator Moderator
}

// NewFilter screens text against words and, when moderator is not nil, the
// remote moderation service.
func NewFilter(words []string, moderator Moderator) *Filter {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Filter{words: lowered, moderator: moderator}
}

// Check reports whether text should be blocked and why. Moderation errors
// leave only the local check in effect.
func (f *Filter) Check(ctx context.Context, text string) Result {
	var reasons []string

	if hits := f.localHits(text); len(hits) > 0 {
		reasons = append(reasons, "profanity detected: "+strings.Join(hits, ", "))
	}

	if f.moderator != nil {
		flagged, err := f.moderator.Flagged(ctx, text)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Moderation unavailable, using local check only")
		case flagged:
			reasons = append(reasons, ModerationReason)
		}
	}

	return Result{Blocked: len(reasons) > 0, Reasons: reasons}
}

// localHits returns the disallowed words contained in text, deduplicated and sorted.
func (f *Filter) localHits(text string) []string {
	lowered := strings.ToLower(text)
	seen := make(map[string]struct{})
	var hits []string
	for _, w := range f.words {
		if _, ok := seen[w]; ok {
			continue
		}
		if strings.Contains(lowered, w) {
			seen[w] = struct{}{}
			hits = append(hits, w)
		}
	}
	sort.Strings(hits)
	return hits
}
