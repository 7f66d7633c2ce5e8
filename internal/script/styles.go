package script

import (
	"sort"
	"strings"
)

// Style describes a visual style's characteristics used to build prompts.
type Style struct {
	Name            string
	Description     string
	Keywords        []string
	NegativePrompts []string
}

// styleCatalog lists the supported visual styles.
var styleCatalog = map[string]Style{
	"modern": {
		Name:            "Modern",
		Description:     "Clean, contemporary design with sleek aesthetics",
		Keywords:        []string{"modern", "sleek", "contemporary", "minimalist", "clean lines", "geometric"},
		NegativePrompts: []string{"outdated", "vintage", "retro", "old-fashioned"},
	},
	"cinematic": {
		Name:            "Cinematic",
		Description:     "Movie-like quality with dramatic lighting and composition",
		Keywords:        []string{"cinematic", "dramatic", "film-like", "epic", "wide shots", "depth of field"},
		NegativePrompts: []string{"amateur", "low production", "flat lighting", "poor composition"},
	},
	"professional": {
		Name:            "Professional",
		Description:     "Corporate and business-oriented visual style",
		Keywords:        []string{"professional", "corporate", "business", "clean", "polished", "formal"},
		NegativePrompts: []string{"casual", "messy", "unprofessional", "chaotic"},
	},
	"creative": {
		Name:            "Creative",
		Description:     "Artistic and imaginative with bold visual elements",
		Keywords:        []string{"creative", "artistic", "imaginative", "colorful", "abstract", "innovative"},
		NegativePrompts: []string{"boring", "conventional", "standard", "plain"},
	},
	"dynamic": {
		Name:            "Dynamic",
		Description:     "Energetic and movement-focused visuals",
		Keywords:        []string{"dynamic", "energetic", "motion", "active", "vibrant", "fast-paced"},
		NegativePrompts: []string{"static", "slow", "dull", "monotonous"},
	},
	"minimal": {
		Name:            "Minimal",
		Description:     "Simple and elegant with focus on essential elements",
		Keywords:        []string{"minimal", "simple", "elegant", "clean", "spacious", "uncluttered"},
		NegativePrompts: []string{"cluttered", "busy", "complex", "overwhelming"},
	},
}

// StyleByName looks up a style case-insensitively.
func StyleByName(name string) (Style, bool) {
	style, ok := styleCatalog[strings.ToLower(name)]
	return style, ok
}

// StyleNames returns the supported style names, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(styleCatalog))
	for name := range styleCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleKeywords returns the comma-joined keyword list for a style, or the
// empty string for an unknown style.
func StyleKeywords(name string) string {
	style, ok := StyleByName(name)
	if !ok {
		return ""
	}
	return strings.Join(style.Keywords, ", ")
}

// NegativePrompt combines the default negative directives with the style's
// own, de-duplicated.
func NegativePrompt(styleName string) string {
	parts := strings.Split(DefaultNegativePrompt, ", ")
	if style, ok := StyleByName(styleName); ok {
		parts = append(parts, style.NegativePrompts...)
	}

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}
