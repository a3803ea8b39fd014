package docdedup

import "strings"

// Group lifecycle contexts for index entries
const (
	DiscoveredContext = "discovered"
	AcceptedContext   = "accepted"
	RejectedContext   = "rejected"
	SharedContext     = "shared"
	RewrittenContext  = "rewritten"
	RemovedContext    = "removed"
)

// DefaultSharedDirName is the directory under the deploy root that holds the
// single retained copy of each deduplicated file.
const DefaultSharedDirName = "shared"

// DefaultExcludePatterns lists basename patterns that are never deduplicated.
// These are pages whose content is target-specific even when copies happen to
// be byte-identical at scan time. Patterns are unanchored regular expressions
// matched against the lowercased basename.
var DefaultExcludePatterns = []string{
	`search`,
	`navtree`,
	`index\.html`,
	`files\.html`,
	`globals\.html`,
}

// DefaultRewriteExtensions lists the file extensions treated as
// reference-bearing text files subject to rewriting.
var DefaultRewriteExtensions = []string{".html", ".css", ".js"}

// Hash type constants
const (
	HashTypeSHA1   uint16 = 1 // SHA-1 (20 bytes)
	HashTypeSHA256 uint16 = 2 // SHA-256 (32 bytes)
	HashTypeSHA512 uint16 = 3 // SHA-512 (64 bytes)
)

// Hash size constants
const (
	HashSizeSHA1   = 20 // SHA-1 hash size in bytes
	HashSizeSHA256 = 32 // SHA-256 hash size in bytes
	HashSizeSHA512 = 64 // SHA-512 hash size in bytes
)

// HashTypeName returns the human-readable name for a hash type
func HashTypeName(hashType uint16) string {
	switch hashType {
	case HashTypeSHA1:
		return "sha1"
	case HashTypeSHA256:
		return "sha256"
	case HashTypeSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// HashTypeFromName returns the hash type constant from a name (case-insensitive)
func HashTypeFromName(name string) (uint16, bool) {
	switch strings.ToLower(name) {
	case "sha1":
		return HashTypeSHA1, true
	case "sha256":
		return HashTypeSHA256, true
	case "sha512":
		return HashTypeSHA512, true
	default:
		return 0, false
	}
}
