package docdedup

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// WriteReport renders the human-readable summary of a run. Callers needing
// structured output consume the Stats record directly.
func WriteReport(w io.Writer, stats *Stats) {
	if stats.GroupsFound == 0 {
		fmt.Fprintln(w, "No duplicate files found.")
		return
	}

	fmt.Fprintln(w, "Deduplication completed!")
	fmt.Fprintf(w, "Duplicate groups found:  %d\n", stats.GroupsFound)
	fmt.Fprintf(w, "Groups skipped:          %d\n", stats.GroupsRejected)
	fmt.Fprintf(w, "Groups processed:        %d\n", stats.FilesProcessed)
	fmt.Fprintf(w, "Files deduplicated:      %d\n", stats.FilesDeduplicated)
	fmt.Fprintf(w, "References updated:      %d\n", stats.ReferencesUpdated)
	fmt.Fprintf(w, "Bytes saved:             %s (%s)\n",
		humanize.Comma(stats.BytesSaved), humanize.Bytes(uint64(stats.BytesSaved)))

	if len(stats.Warnings) > 0 {
		fmt.Fprintf(w, "\n%d warning(s):\n", len(stats.Warnings))
		for _, warning := range stats.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}
}
