package docdedup

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Rewriter rewrites textual references to a deduplicated file so they
// resolve to the shared copy. Only files with a recognized extension are
// touched; everything else is scanned for hashing but never rewritten.
type Rewriter struct {
	extensions map[string]bool
}

// NewRewriter creates a rewriter recognizing the given extensions
// (case-insensitive, leading dot optional)
func NewRewriter(extensions []string) *Rewriter {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Rewriter{extensions: exts}
}

// IsRewritable returns true if the file's extension is recognized as
// reference-bearing text
func (rw *Rewriter) IsRewritable(path string) bool {
	return rw.extensions[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the recognized extension set
func (rw *Rewriter) Extensions() map[string]bool {
	return rw.extensions
}

// tokenSpan marks the byte range of one old-reference token within a file,
// excluding the surrounding syntax that is preserved as-is
type tokenSpan struct {
	start int
	end   int
}

// referencePatterns builds the three substitution-context patterns for a
// filename: markup source/link attribute values, stylesheet url-functions,
// and bare quoted string literals. The attribute keyword is matched
// case-insensitively; each pattern captures the surrounding syntax so quote
// style survives substitution.
func referencePatterns(oldName string) []*regexp.Regexp {
	quoted := regexp.QuoteMeta(oldName)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)((?:src|href)\s*=\s*["'])` + quoted + `(["'])`),
		regexp.MustCompile(`(?i)(url\s*\(\s*["']?)` + quoted + `(["']?\s*\))`),
		regexp.MustCompile(`(?i)(["'])` + quoted + `(["'])`),
	}
}

// collectTokenSpans finds every occurrence of oldName in a recognized
// substitution context. Spans from different patterns that land on the same
// token coincide exactly (the bare-literal pattern overlaps the attribute
// pattern, say), so overlapping spans collapse to the first.
func collectTokenSpans(content []byte, oldName string) []tokenSpan {
	var spans []tokenSpan
	for _, pattern := range referencePatterns(oldName) {
		for _, m := range pattern.FindAllSubmatchIndex(content, -1) {
			// m[3] is the end of the leading capture, m[4] the start of the
			// trailing capture; the token sits between them
			spans = append(spans, tokenSpan{start: m[3], end: m[4]})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	var merged []tokenSpan
	lastEnd := -1
	for _, span := range spans {
		if span.start < lastEnd {
			continue
		}
		merged = append(merged, span)
		lastEnd = span.end
	}
	return merged
}

// substitutionSegments slices the original content around each token span
// and interleaves the replacement, producing the segment vector for a
// single writev
func substitutionSegments(content []byte, spans []tokenSpan, replacement []byte) [][]byte {
	segments := make([][]byte, 0, 2*len(spans)+1)
	prev := 0
	for _, span := range spans {
		segments = append(segments, content[prev:span.start], replacement)
		prev = span.end
	}
	segments = append(segments, content[prev:])
	return segments
}

// RewriteReferences rewrites every occurrence of oldName in the recognized
// substitution contexts to newRel and reports whether the content changed.
// An unchanged file is never written, so re-running on already-correct files
// is a no-op. Changed content is written to a temp file with a vectored
// write and renamed over the original; the original file mode is kept.
func (rw *Rewriter) RewriteReferences(path, oldName, newRel string) (bool, error) {
	content, spans, info, err := rw.scanReferences(path, oldName)
	if err != nil {
		return false, err
	}
	if len(spans) == 0 {
		return false, nil
	}

	segments := substitutionSegments(content, spans, []byte(newRel))

	tempPath := generateTempFileName(path, "rewrite")
	if err := writeFileVectored(tempPath, segments, info.Mode().Perm()); err != nil {
		os.Remove(tempPath)
		return false, &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return false, &WriteError{Path: path, Err: err}
	}

	if IsDebugEnabled("rewrite") {
		logger := GetLogger("rewrite")
		logger.Trace().
			Str("file", path).
			Str("old", oldName).
			Str("new", newRel).
			Int("tokens", len(spans)).
			Msg("rewrote references")
	}

	return true, nil
}

// PreviewReferences reports whether RewriteReferences would change the file,
// without writing anything
func (rw *Rewriter) PreviewReferences(path, oldName string) (bool, error) {
	_, spans, _, err := rw.scanReferences(path, oldName)
	if err != nil {
		return false, err
	}
	return len(spans) > 0, nil
}

// scanReferences loads a file and locates the token spans for oldName
func (rw *Rewriter) scanReferences(path, oldName string) ([]byte, []tokenSpan, os.FileInfo, error) {
	if !rw.IsRewritable(path) {
		return nil, nil, nil, fmt.Errorf("not a rewritable file: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, nil, &WriteError{Path: path, Err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, &WriteError{Path: path, Err: err}
	}

	return content, collectTokenSpans(content, oldName), info, nil
}
