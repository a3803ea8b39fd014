package docdedup

import (
	"fmt"
	"path/filepath"
)

// FileRecord describes one scanned file. Records are created during index
// building, never mutated afterwards, and discarded once orchestration for
// their group completes.
type FileRecord struct {
	AbsPath string `json:"path"`
	Digest  string `json:"digest"`
	Size    int64  `json:"size"`
}

// Basename returns the final path element of the record
func (fr FileRecord) Basename() string {
	return filepath.Base(fr.AbsPath)
}

// DuplicateGroup represents all scanned files sharing one content digest.
// Records preserve scan order, so Records[0] is the first file seen with
// this digest.
type DuplicateGroup struct {
	Digest  string       `json:"digest"`
	Records []FileRecord `json:"files"`
}

// Count returns the number of member files
func (g *DuplicateGroup) Count() int {
	return len(g.Records)
}

// TotalSize returns the combined size of all member files in bytes
func (g *DuplicateGroup) TotalSize() int64 {
	var total int64
	for _, rec := range g.Records {
		total += rec.Size
	}
	return total
}

// CommonBasename returns the basename shared by every member, or false when
// members disagree. Comparison is an exact string match; a case difference
// counts as disagreement.
func (g *DuplicateGroup) CommonBasename() (string, bool) {
	if len(g.Records) == 0 {
		return "", false
	}
	name := g.Records[0].Basename()
	for _, rec := range g.Records[1:] {
		if rec.Basename() != name {
			return "", false
		}
	}
	return name, true
}

// SharedArtifact describes the single physical file retained under the
// shared directory for an accepted group.
type SharedArtifact struct {
	SharedPath string `json:"shared_path"`
	Digest     string `json:"digest"`
	Size       int64  `json:"size"`
}

// ReferenceEdit describes one textual substitution, pending or applied.
// OldToken is the relative-path string as it appeared literally in the
// source file; NewToken resolves to the shared copy from the referencing
// file's own directory.
type ReferenceEdit struct {
	ReferencingFile string `json:"file"`
	OldToken        string `json:"old"`
	NewToken        string `json:"new"`
}

// Stats accumulates the counters for one deduplication run. It is owned by
// the Deduplicator for the duration of the run and returned by Run; there is
// no ambient global state.
type Stats struct {
	GroupsFound       int      `json:"groups_found"`
	GroupsRejected    int      `json:"groups_rejected"`
	FilesProcessed    int      `json:"files_processed"`
	FilesDeduplicated int      `json:"files_deduplicated"`
	BytesSaved        int64    `json:"bytes_saved"`
	ReferencesUpdated int      `json:"references_updated"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Warn records a non-fatal per-file or per-group problem
func (s *Stats) Warn(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}
