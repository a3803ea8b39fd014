package docdedup

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteReportNoDuplicates(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, &Stats{})
	assert.Equal(t, "No duplicate files found.\n", buf.String())
}

func TestWriteReportCounters(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, &Stats{
		GroupsFound:       3,
		GroupsRejected:    1,
		FilesProcessed:    2,
		FilesDeduplicated: 4,
		BytesSaved:        2 * 1024 * 1024,
		ReferencesUpdated: 6,
	})

	out := buf.String()
	assert.Contains(t, out, "Deduplication completed!")
	assert.Contains(t, out, "Duplicate groups found:  3")
	assert.Contains(t, out, "Groups skipped:          1")
	assert.Contains(t, out, "Files deduplicated:      4")
	assert.Contains(t, out, "References updated:      6")
	assert.Contains(t, out, "2,097,152")
	assert.NotContains(t, out, "warning")
}

func TestWriteReportWarnings(t *testing.T) {
	stats := &Stats{GroupsFound: 1}
	stats.Warn("failed to remove %s: %v", "/docs/t1/old.css", "permission denied")

	var buf bytes.Buffer
	WriteReport(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "1 warning(s):")
	assert.Contains(t, out, "failed to remove /docs/t1/old.css")
}
