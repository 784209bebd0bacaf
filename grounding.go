package advisor

import "regexp"

// groundingPattern matches definitional or explanatory prompts that benefit
// from adding the web-search capability to the tool set. The pattern is a
// known-fragile policy inherited from the original service and is preserved
// verbatim for compatibility; replace NeedsGrounding, not the loop, when a
// better signal exists.
var groundingPattern = regexp.MustCompile(`(?i)\b(what is|what are|who is|explain|define|definition of|meaning of|how does|how do|why is|why do)\b`)

// NeedsGrounding decides, once per request, whether the web-search capability
// is added to the active tool set.
func NeedsGrounding(prompt string) bool {
	return groundingPattern.MatchString(prompt)
}
