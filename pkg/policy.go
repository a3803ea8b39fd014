package docdedup

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeList holds basename patterns that disqualify a duplicate group from
// deduplication. Patterns are unanchored regular expressions matched against
// the lowercased basename, so a plain literal behaves as a substring match.
type ExcludeList struct {
	patterns []*regexp.Regexp
}

// NewExcludeList compiles the given patterns into an exclude list
func NewExcludeList(patterns []string) (*ExcludeList, error) {
	el := &ExcludeList{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}

	for _, patternStr := range patterns {
		patternStr = strings.TrimSpace(patternStr)
		if patternStr == "" {
			continue
		}
		pattern, err := regexp.Compile(patternStr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %s - %w", patternStr, err)
		}
		el.patterns = append(el.patterns, pattern)
	}

	return el, nil
}

// DefaultExcludeList returns an exclude list built from the default patterns
func DefaultExcludeList() *ExcludeList {
	el, err := NewExcludeList(DefaultExcludePatterns)
	if err != nil {
		// The defaults are compile-time constants; a failure here is a
		// programming error
		panic(err)
	}
	return el
}

// Matches returns true if the basename matches any exclude pattern
func (el *ExcludeList) Matches(basename string) bool {
	lowered := strings.ToLower(basename)
	for _, pattern := range el.patterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// HasPatterns returns true if there are any exclude patterns loaded
func (el *ExcludeList) HasPatterns() bool {
	return len(el.patterns) > 0
}

// Decision is the outcome of evaluating a duplicate group
type Decision struct {
	Accepted   bool
	Reason     string     // reject reason when not accepted
	Filename   string     // common basename when accepted
	Canonical  FileRecord // representative whose bytes are promoted
	SharedPath string     // destination under the shared directory
}

// Policy decides whether a duplicate group is eligible for deduplication
// and, if so, selects the canonical representative and the shared
// destination path.
type Policy struct {
	sharedDir string // absolute path of the shared directory
	excludes  *ExcludeList
}

// NewPolicy creates a policy writing shared copies to
// <root>/<sharedDirName>
func NewPolicy(root, sharedDirName string, excludes *ExcludeList) *Policy {
	if excludes == nil {
		excludes = DefaultExcludeList()
	}
	return &Policy{
		sharedDir: filepath.Join(root, sharedDirName),
		excludes:  excludes,
	}
}

// SharedDir returns the absolute path of the shared directory
func (p *Policy) SharedDir() string {
	return p.sharedDir
}

// Evaluate applies the rejection rules in order: mixed basenames first, then
// the exclusion list. An accepted group's canonical file is the first member
// in scan order (arbitrary but deterministic) and its shared path is
// <sharedDir>/<basename>.
func (p *Policy) Evaluate(group *DuplicateGroup) Decision {
	name, uniform := group.CommonBasename()
	if !uniform {
		names := make([]string, 0, len(group.Records))
		for _, rec := range group.Records {
			names = append(names, rec.Basename())
		}
		return Decision{
			Reason: fmt.Sprintf("ambiguous filename: %s", strings.Join(names, ", ")),
		}
	}

	if p.excludes.Matches(name) {
		return Decision{
			Reason: fmt.Sprintf("excluded filename: %s", name),
		}
	}

	return Decision{
		Accepted:   true,
		Filename:   name,
		Canonical:  group.Records[0],
		SharedPath: filepath.Join(p.sharedDir, name),
	}
}
