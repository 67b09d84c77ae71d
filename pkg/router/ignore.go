package router

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/woozymasta/pathrules"
)

// ignoreRules excludes entries listed in the root's ignore file.
// A nil *ignoreRules excludes nothing.
type ignoreRules struct {
	matcher *pathrules.Matcher
}

// loadIgnoreRules reads gitignore-like rules from name in fsys.
// A missing file yields no rules.
func loadIgnoreRules(fsys fs.FS, name string) (*ignoreRules, error) {
	if name == "" || name == NoIgnoreFile {
		return nil, nil
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	rules, err := pathrules.ParseRules(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	m, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionInclude,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &ignoreRules{matcher: m}, nil
}

// excluded reports whether the slash-separated path rel is ignored.
func (r *ignoreRules) excluded(rel string, isDir bool) bool {
	if r == nil {
		return false
	}
	return r.matcher.Excluded(rel, isDir)
}
