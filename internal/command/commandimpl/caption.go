package commandimpl

import (
	"strings"

	"github.com/orgball2608/artfeed-bot/internal/domain"
)

type parsedCaption struct {
	Caption        string
	Transformation domain.Transformation
	Prompt         string
}

// parseCaption pulls the first style hashtag and a "prompt:" line out of a
// photo caption. Unknown hashtags stay in the caption text.
func parseCaption(raw string) parsedCaption {
	out := parsedCaption{Transformation: domain.TransformationOriginal}
	styled := false

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len("prompt:") && strings.EqualFold(trimmed[:len("prompt:")], "prompt:") {
			out.Prompt = strings.TrimSpace(trimmed[len("prompt:"):])
			continue
		}

		var words []string
		for _, w := range strings.Fields(trimmed) {
			if !styled && len(w) > 1 && strings.HasPrefix(w, "#") {
				if kind, err := domain.ParseTransformation(w); err == nil {
					out.Transformation = kind
					styled = true
					continue
				}
			}
			words = append(words, w)
		}
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}

	out.Caption = strings.Join(lines, "\n")
	return out
}
