package docdedup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Deduplicator sequences one deduplication run over a deploy root:
// scan -> index -> policy -> shared copy -> reference rewrite -> removal.
// Each accepted group moves through the lifecycle
// discovered -> accepted -> shared -> rewritten -> removed; a rejected group
// stops at rejected. The shared copy must be durably written and verified
// before any reference is rewritten, and all of a group's rewrites must be
// applied before any original is deleted.
type Deduplicator struct {
	root     string
	hasher   *Hasher
	policy   *Policy
	rewriter *Rewriter
	workers  int
	dryRun   bool
	log      zerolog.Logger
}

// NewDeduplicator validates the deploy root and assembles a deduplicator
// from configuration. A missing or non-directory root is a fatal
// precondition failure: no scan is attempted and nothing is mutated.
func NewDeduplicator(root string, cfg *Config) (*Deduplicator, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid deploy directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("deploy path %s is not a directory", root)
	}

	if cfg == nil {
		cfg, err = LoadConfig("")
		if err != nil {
			return nil, err
		}
	}

	hashConfig := cfg.GetHashConfig()
	if err := ValidateHashAlgorithm(hashConfig.Default); err != nil {
		return nil, err
	}
	algorithm, err := GetHashAlgorithm(hashConfig.Default)
	if err != nil {
		return nil, err
	}

	perfConfig := cfg.GetPerformanceConfig()
	if err := ValidateHashWorkers(perfConfig.HashWorkers); err != nil {
		return nil, err
	}
	bufferSize, err := ParseHumanSize(perfConfig.HashBuffer)
	if err != nil {
		return nil, fmt.Errorf("invalid hash buffer size: %w", err)
	}

	dedupeConfig := cfg.GetDedupeConfig()
	excludes, err := NewExcludeList(dedupeConfig.Exclude)
	if err != nil {
		return nil, err
	}

	return &Deduplicator{
		root:     absRoot,
		hasher:   NewHasher(algorithm, bufferSize),
		policy:   NewPolicy(absRoot, dedupeConfig.SharedDir, excludes),
		rewriter: NewRewriter(cfg.GetRewriteConfig().Extensions),
		workers:  perfConfig.HashWorkers,
		log:      GetLogger("dedup"),
	}, nil
}

// SetDryRun switches the deduplicator into evaluation-only mode: groups are
// scanned, hashed and evaluated, and the stats report what a real run would
// do, but the tree is not mutated
func (d *Deduplicator) SetDryRun(dryRun bool) {
	d.dryRun = dryRun
}

// Root returns the absolute deploy root
func (d *Deduplicator) Root() string {
	return d.root
}

// SharedDir returns the absolute path of the shared directory
func (d *Deduplicator) SharedDir() string {
	return d.policy.SharedDir()
}

// Run executes one deduplication pass and returns the accumulated stats.
// Per-file and per-group failures are recovered locally (skip and
// continue); the returned error is non-nil only for failures that prevent
// the scan-to-report sequence itself.
func (d *Deduplicator) Run() (*Stats, error) {
	stats := &Stats{}

	paths, err := ScanTree(d.root)
	if err != nil {
		return nil, err
	}

	index := NewDuplicateIndex()
	index.Build(paths, d.hasher, d.workers)
	stats.Warnings = append(stats.Warnings, index.Warnings()...)

	groups := index.DuplicateGroups()
	stats.GroupsFound = len(groups)
	if len(groups) == 0 {
		d.log.Info().Msg("no duplicate files found")
		return stats, nil
	}

	for _, group := range groups {
		name, _ := group.CommonBasename()
		if name == "" {
			name = group.Records[0].Basename()
		}
		d.log.Info().
			Str("filename", name).
			Int("copies", group.Count()).
			Msg("duplicate set found")
	}

	// Textual files are enumerated once per run; per-group rewriting is
	// restricted to each member's own directory below
	textFiles := FilterByExtension(paths, d.rewriter.Extensions())

	for _, group := range groups {
		d.processGroup(group, index, textFiles, stats)
	}

	return stats, nil
}

// processGroup runs the per-group state machine. Any failure aborts just
// this group: a failed shared copy leaves the originals untouched, and a
// failed removal leaves an inert original behind.
func (d *Deduplicator) processGroup(group *DuplicateGroup, index *DuplicateIndex, textFiles []string, stats *Stats) {
	decision := d.policy.Evaluate(group)
	if !decision.Accepted {
		index.UpdateState(group.Digest, RejectedContext)
		stats.GroupsRejected++
		d.log.Info().
			Str("digest", group.Digest).
			Str("reason", decision.Reason).
			Msg("skipping duplicate group")
		return
	}
	index.UpdateState(group.Digest, AcceptedContext)

	d.log.Info().
		Str("filename", decision.Filename).
		Int("copies", group.Count()).
		Msg("deduplicating")

	if d.dryRun {
		d.previewGroup(group, decision, textFiles, stats)
		return
	}

	artifact, err := writeSharedCopy(decision.Canonical, decision.SharedPath)
	if err != nil {
		stats.Warn("group %s aborted: %v", decision.Filename, err)
		d.log.Warn().Err(err).Str("filename", decision.Filename).Msg("shared copy failed, group skipped")
		return
	}
	index.UpdateState(group.Digest, SharedContext)

	if !d.rewriteGroupReferences(group, decision, artifact, textFiles, stats) {
		// A failed rewrite aborts the group before removal. References
		// rewritten so far already resolve to the shared copy, and the
		// untouched originals stay in place.
		return
	}
	index.UpdateState(group.Digest, RewrittenContext)

	for _, rec := range group.Records {
		if rec.AbsPath == artifact.SharedPath {
			// Possible when re-running after a partial failure: the shared
			// copy itself joined the group. It is the retained instance and
			// must not be deleted.
			continue
		}
		if err := os.Remove(rec.AbsPath); err != nil {
			removalErr := &RemovalError{Path: rec.AbsPath, Err: err}
			stats.Warn("%v", removalErr)
			d.log.Warn().Err(err).Str("path", rec.AbsPath).Msg("failed to remove duplicate")
			continue
		}
		stats.FilesDeduplicated++
		stats.BytesSaved += rec.Size
	}
	index.UpdateState(group.Digest, RemovedContext)

	stats.FilesProcessed++
}

// rewriteGroupReferences applies reference rewrites for every member of an
// accepted group. Rewriting is scoped to text files in the same directory
// as each removed copy, and the new token is recomputed relative to each
// referencing file's own directory. Returns false when a rewrite failed and
// the group must not proceed to removal.
func (d *Deduplicator) rewriteGroupReferences(group *DuplicateGroup, decision Decision, artifact *SharedArtifact, textFiles []string, stats *Stats) bool {
	for _, rec := range group.Records {
		memberDir := filepath.Dir(rec.AbsPath)

		for _, refFile := range textFiles {
			if filepath.Dir(refFile) != memberDir {
				continue
			}

			newRel, err := filepath.Rel(filepath.Dir(refFile), artifact.SharedPath)
			if err != nil {
				stats.Warn("group %s aborted: cannot compute relative path for %s: %v",
					decision.Filename, refFile, err)
				return false
			}

			changed, err := d.rewriter.RewriteReferences(refFile, decision.Filename, filepath.ToSlash(newRel))
			if err != nil {
				stats.Warn("group %s aborted: %v", decision.Filename, err)
				d.log.Warn().Err(err).Str("file", refFile).Msg("reference rewrite failed, group skipped")
				return false
			}
			if changed {
				stats.ReferencesUpdated++
			}
		}
	}
	return true
}

// previewGroup accumulates the stats a real run would produce for an
// accepted group, without touching the filesystem
func (d *Deduplicator) previewGroup(group *DuplicateGroup, decision Decision, textFiles []string, stats *Stats) {
	for _, rec := range group.Records {
		memberDir := filepath.Dir(rec.AbsPath)
		for _, refFile := range textFiles {
			if filepath.Dir(refFile) != memberDir {
				continue
			}
			changed, err := d.rewriter.PreviewReferences(refFile, decision.Filename)
			if err != nil {
				stats.Warn("%v", err)
				continue
			}
			if changed {
				stats.ReferencesUpdated++
			}
		}

		if rec.AbsPath != decision.SharedPath {
			stats.FilesDeduplicated++
			stats.BytesSaved += rec.Size
		}
	}
	stats.FilesProcessed++
}
