package docdedup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeduplicator(t *testing.T, root string) *Deduplicator {
	t.Helper()
	dedup, err := NewDeduplicator(root, nil)
	require.NoError(t, err)
	return dedup
}

// setupTwoTargetTree builds the classic two-target layout: each target holds
// an identical stylesheet referenced by its own (distinct) index page
func setupTwoTargetTree(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	css := "body { font-family: sans-serif; }\n"
	writeTree(t, root, map[string]string{
		"target1/doxygen.css": css,
		"target2/doxygen.css": css,
		"target1/index.html":  `<html><head><link href="doxygen.css"></head><body>one</body></html>`,
		"target2/index.html":  `<html><head><link href="doxygen.css"></head><body>two</body></html>`,
	})
	return root, css
}

func TestNewDeduplicatorInvalidRoot(t *testing.T) {
	_, err := NewDeduplicator(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)

	filePath := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
	_, err = NewDeduplicator(filePath, nil)
	assert.Error(t, err)
}

func TestNewDeduplicatorRejectsBadConfig(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyOverrides([]string{"default:md5"}))
	_, err = NewDeduplicator(root, cfg)
	assert.Error(t, err)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyOverrides([]string{"hash_workers:0"}))
	_, err = NewDeduplicator(root, cfg)
	assert.Error(t, err)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyOverrides([]string{"hash_buffer:nonsense"}))
	_, err = NewDeduplicator(root, cfg)
	assert.Error(t, err)
}

func TestRunDeduplicatesAcrossTargets(t *testing.T) {
	root, css := setupTwoTargetTree(t)

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 0, stats.GroupsRejected)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 2, stats.FilesDeduplicated)
	assert.Equal(t, 2, stats.ReferencesUpdated)
	assert.Equal(t, int64(2*len(css)), stats.BytesSaved)
	assert.Empty(t, stats.Warnings)

	// One retained copy under shared/, byte-identical to the originals
	sharedPath := filepath.Join(root, "shared", "doxygen.css")
	content, err := os.ReadFile(sharedPath)
	require.NoError(t, err)
	assert.Equal(t, css, string(content))

	// Both originals are gone
	_, err = os.Stat(filepath.Join(root, "target1", "doxygen.css"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "target2", "doxygen.css"))
	assert.True(t, os.IsNotExist(err))

	// References in both targets resolve to the shared copy
	for _, target := range []string{"target1", "target2"} {
		page, err := os.ReadFile(filepath.Join(root, target, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(page), `href="../shared/doxygen.css"`)

		resolved := filepath.Join(root, target, "../shared/doxygen.css")
		_, err = os.Stat(resolved)
		assert.NoError(t, err, "reference in %s must resolve", target)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root, _ := setupTwoTargetTree(t)

	first := newTestDeduplicator(t, root)
	_, err := first.Run()
	require.NoError(t, err)

	second := newTestDeduplicator(t, root)
	stats, err := second.Run()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.GroupsFound)
	assert.Equal(t, 0, stats.FilesDeduplicated)
	assert.Equal(t, 0, stats.ReferencesUpdated)
	assert.Equal(t, int64(0), stats.BytesSaved)

	// Already-rewritten pages are untouched
	page, err := os.ReadFile(filepath.Join(root, "target1", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="../shared/doxygen.css"`)
}

func TestRunRejectsExcludedBasenames(t *testing.T) {
	root := t.TempDir()
	page := `<html><body>identical landing page</body></html>`
	writeTree(t, root, map[string]string{
		"target1/index.html": page,
		"target2/index.html": page,
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 1, stats.GroupsRejected)
	assert.Equal(t, 0, stats.FilesProcessed)
	assert.Equal(t, 0, stats.FilesDeduplicated)

	// Excluded pages stay where they are
	for _, target := range []string{"target1", "target2"} {
		_, err := os.Stat(filepath.Join(root, target, "index.html"))
		assert.NoError(t, err)
	}
	_, err = os.Stat(filepath.Join(root, "shared"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRejectsMixedBasenames(t *testing.T) {
	root := t.TempDir()
	css := ".hidden { display: none; }"
	writeTree(t, root, map[string]string{
		"target1/light.css": css,
		"target2/dark.css":  css,
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 1, stats.GroupsRejected)
	assert.Equal(t, 0, stats.FilesDeduplicated)

	_, err = os.Stat(filepath.Join(root, "target1", "light.css"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "target2", "dark.css"))
	assert.NoError(t, err)
}

func TestRunNoDuplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"target1/index.html": "<html>one</html>",
		"target2/index.html": "<html>two</html>",
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.GroupsFound)
	assert.Equal(t, 0, stats.FilesProcessed)
}

func TestRunRewritesOnlySameDirectory(t *testing.T) {
	root := t.TempDir()
	css := "pre { overflow: auto; }"
	writeTree(t, root, map[string]string{
		"target1/doxygen.css":  css,
		"target2/doxygen.css":  css,
		"target1/index.html":   `<link href="doxygen.css">`,
		"elsewhere/notes.html": `<p>see also</p><link href="doxygen.css">`,
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ReferencesUpdated)

	// Rewriting is scoped to the duplicate's own directory; a same-named
	// reference elsewhere points at a different file and is left alone
	notes, err := os.ReadFile(filepath.Join(root, "elsewhere", "notes.html"))
	require.NoError(t, err)
	assert.Contains(t, string(notes), `href="doxygen.css"`)
}

func TestRunDryRun(t *testing.T) {
	root, css := setupTwoTargetTree(t)

	dedup := newTestDeduplicator(t, root)
	dedup.SetDryRun(true)
	stats, err := dedup.Run()
	require.NoError(t, err)

	// Counters report what a real run would do
	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 2, stats.FilesDeduplicated)
	assert.Equal(t, 2, stats.ReferencesUpdated)
	assert.Equal(t, int64(2*len(css)), stats.BytesSaved)

	// Nothing on disk changed
	_, err = os.Stat(filepath.Join(root, "shared"))
	assert.True(t, os.IsNotExist(err))
	for _, target := range []string{"target1", "target2"} {
		content, err := os.ReadFile(filepath.Join(root, target, "doxygen.css"))
		require.NoError(t, err)
		assert.Equal(t, css, string(content))

		page, err := os.ReadFile(filepath.Join(root, target, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(page), `href="doxygen.css"`)
	}
}

func TestRunAfterPartialFailureKeepsSharedCopy(t *testing.T) {
	// Simulates a rerun after a crash that left the shared copy in place but
	// one original not yet removed. The shared copy joins the duplicate group
	// and must survive as the retained instance.
	root := t.TempDir()
	css := "table { border-collapse: collapse; }"
	writeTree(t, root, map[string]string{
		"shared/doxygen.css":  css,
		"target2/doxygen.css": css,
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesDeduplicated)
	assert.Equal(t, int64(len(css)), stats.BytesSaved)

	content, err := os.ReadFile(filepath.Join(root, "shared", "doxygen.css"))
	require.NoError(t, err)
	assert.Equal(t, css, string(content))

	_, err = os.Stat(filepath.Join(root, "target2", "doxygen.css"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCustomSharedDir(t *testing.T) {
	root, _ := setupTwoTargetTree(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyOverrides([]string{"shared_dir:common"}))

	dedup, err := NewDeduplicator(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dedup.Root(), "common"), dedup.SharedDir())

	_, err = dedup.Run()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "common", "doxygen.css"))
	assert.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(root, "target1", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="../common/doxygen.css"`)
}

func TestRunFailedSharedCopyLeavesOriginals(t *testing.T) {
	root, css := setupTwoTargetTree(t)

	// A regular file squatting on the shared directory name makes the copy
	// step fail; the group must be aborted with the originals untouched
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared"), []byte("in the way"), 0644))

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 0, stats.FilesProcessed)
	assert.Equal(t, 0, stats.FilesDeduplicated)
	assert.NotEmpty(t, stats.Warnings)

	for _, target := range []string{"target1", "target2"} {
		content, err := os.ReadFile(filepath.Join(root, target, "doxygen.css"))
		require.NoError(t, err)
		assert.Equal(t, css, string(content))

		page, err := os.ReadFile(filepath.Join(root, target, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(page), `href="doxygen.css"`)
	}
}

func TestRunThreeCopies(t *testing.T) {
	root := t.TempDir()
	js := "function toggle(id) { return id; }\n"
	writeTree(t, root, map[string]string{
		"t1/dynsections.js": js,
		"t2/dynsections.js": js,
		"t3/dynsections.js": js,
		"t1/page.html":      `<html>a<script src="dynsections.js"></script></html>`,
		"t2/page.html":      `<html>b<script src="dynsections.js"></script></html>`,
		"t3/page.html":      `<html>c<script src="dynsections.js"></script></html>`,
	})

	dedup := newTestDeduplicator(t, root)
	stats, err := dedup.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GroupsFound)
	assert.Equal(t, 3, stats.FilesDeduplicated)
	assert.Equal(t, 3, stats.ReferencesUpdated)
	assert.Equal(t, int64(3*len(js)), stats.BytesSaved)

	_, err = os.Stat(filepath.Join(root, "shared", "dynsections.js"))
	assert.NoError(t, err)
	for _, target := range []string{"t1", "t2", "t3"} {
		page, err := os.ReadFile(filepath.Join(root, target, "page.html"))
		require.NoError(t, err)
		assert.Contains(t, string(page), `src="../shared/dynsections.js"`)
	}
}
