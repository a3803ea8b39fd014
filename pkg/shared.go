package docdedup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// writeSharedCopy copies the canonical file's bytes (never a move) to
// sharedPath and returns the resulting artifact. The copy goes to a temp
// name first, is fsynced, renamed into place, and the shared directory is
// fsynced, so the artifact is durably on disk before the caller rewrites
// references or deletes originals. Mode and mtime are preserved
// best-effort. On any failure the originals are untouched and the caller
// aborts just this group.
func writeSharedCopy(canonical FileRecord, sharedPath string) (*SharedArtifact, error) {
	sharedDir := filepath.Dir(sharedPath)
	if err := os.MkdirAll(sharedDir, 0755); err != nil {
		return nil, &WriteError{Path: sharedDir, Err: err}
	}

	src, err := os.Open(canonical.AbsPath)
	if err != nil {
		return nil, &WriteError{Path: canonical.AbsPath, Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, &WriteError{Path: canonical.AbsPath, Err: err}
	}

	tempPath := generateTempFileName(sharedPath, "shared")
	dst, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return nil, &WriteError{Path: tempPath, Err: err}
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return nil, &WriteError{Path: tempPath, Err: err}
	}

	if err := unix.Fsync(int(dst.Fd())); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return nil, &WriteError{Path: tempPath, Err: err}
	}

	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return nil, &WriteError{Path: tempPath, Err: err}
	}

	if err := os.Rename(tempPath, sharedPath); err != nil {
		os.Remove(tempPath)
		return nil, &WriteError{Path: sharedPath, Err: err}
	}

	// Metadata preservation is best-effort; a failure here does not abort
	// the group
	os.Chtimes(sharedPath, time.Now(), info.ModTime())

	if err := syncDir(sharedDir); err != nil {
		return nil, &WriteError{Path: sharedDir, Err: err}
	}

	// Verify the artifact is present with the expected size before anything
	// is rewritten or removed
	written, err := os.Stat(sharedPath)
	if err != nil {
		return nil, &WriteError{Path: sharedPath, Err: err}
	}
	if written.Size() != canonical.Size {
		return nil, &WriteError{
			Path: sharedPath,
			Err:  fmt.Errorf("size mismatch: wrote %d bytes, expected %d", written.Size(), canonical.Size),
		}
	}

	return &SharedArtifact{
		SharedPath: sharedPath,
		Digest:     canonical.Digest,
		Size:       written.Size(),
	}, nil
}

// syncDir fsyncs a directory so a preceding rename is durable
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return unix.Fsync(int(d.Fd()))
}
