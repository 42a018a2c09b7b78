package assistant

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"zhujian/internal/errs"
)

// Profile extends the built-in routing keyword sets per deployment. Sites
// use their own jargon for the same intents ("要抓的事" for focus, "形象进度"
// for progress), so the sets are additive, never replacing.
type Profile struct {
	FocusKeywords    []string `toml:"focus_keywords"`
	ProgressKeywords []string `toml:"progress_keywords"`
}

func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errs.Wrapf(err, "read profile %q", path)
	}
	var p Profile
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Profile{}, errs.Wrapf(err, "decode profile %q", path)
	}
	return p, nil
}

// Apply merges the profile into the keyword sets consulted by IsFocusQuery
// and InferIntent. Duplicates and blank entries are dropped.
func (p Profile) Apply() {
	focusKeywords = mergeKeywords(focusKeywords, p.FocusKeywords)
	progressKeywords = mergeKeywords(progressKeywords, p.ProgressKeywords)
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, k := range base {
		seen[k] = struct{}{}
	}
	out := base
	for _, k := range extra {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
