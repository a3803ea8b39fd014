package docdedup

import "fmt"

// ReadError reports a file that could not be read while hashing. The file is
// excluded from the duplicate index and the run continues.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed copy to the shared directory or a failed
// reference rewrite. The affected group is aborted; other groups continue.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *WriteError) Unwrap() error {
	return e.Err
}

// RemovalError reports a redundant file that could not be deleted. The run
// continues; stats are not incremented for that file. A leftover original is
// inert rather than incorrect: rewritten references already resolve to the
// shared copy.
type RemovalError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *RemovalError) Error() string {
	return fmt.Sprintf("failed to remove %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *RemovalError) Unwrap() error {
	return e.Err
}
