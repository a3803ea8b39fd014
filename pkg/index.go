package docdedup

import (
	"strings"
	"sync"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// DuplicateIndex maps content digests to the ordered list of files sharing
// that digest. Groups are held in a digest-keyed skiplist so iteration order
// is deterministic; the skiplist context string carries each group's
// lifecycle state (discovered, accepted, rejected, shared, rewritten,
// removed). Within a group, records preserve scan order: the first record is
// the first file seen, used later as the canonical tie-break.
type DuplicateIndex struct {
	skiplist  *zcsl.ZeroCopySkiplist[DuplicateGroup, string, string]
	fileCount int
	warnings  []string
}

// hashResult carries the outcome of hashing one scanned path
type hashResult struct {
	digest string
	size   int64
	err    error
}

// NewDuplicateIndex creates an empty duplicate index
func NewDuplicateIndex() *DuplicateIndex {
	getKeyFromItem := func(g *DuplicateGroup) string {
		return g.Digest
	}

	getItemSize := func(g *DuplicateGroup) int {
		return int(g.TotalSize())
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	skiplist := zcsl.MakeZeroCopySkiplist[DuplicateGroup, string, string](
		16,
		getKeyFromItem,
		getItemSize,
		cmpKey,
	)

	return &DuplicateIndex{
		skiplist: skiplist,
	}
}

// Add inserts one file record into the index, appending to an existing
// digest bucket or starting a new one
func (di *DuplicateIndex) Add(record FileRecord) {
	di.fileCount++

	node, _ := di.skiplist.Find(record.Digest)
	if node != nil {
		group := node.Item()
		group.Records = append(group.Records, record)
		return
	}

	group := DuplicateGroup{
		Digest:  record.Digest,
		Records: []FileRecord{record},
	}
	di.skiplist.Insert(&group, DiscoveredContext)
}

// Build hashes every path and populates the index. Paths are hashed by up
// to `workers` goroutines, but results are folded into the index strictly in
// scan order, so bucket order (and therefore canonical selection) matches a
// serial run. Unreadable files are recorded as warnings and contribute to no
// group.
func (di *DuplicateIndex) Build(paths []string, hasher *Hasher, workers int) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	logger := GetLogger("index")
	results := make([]hashResult, len(paths))

	if workers <= 1 {
		for i, path := range paths {
			digest, size, err := hasher.Digest(path)
			results[i] = hashResult{digest: digest, size: size, err: err}
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					digest, size, err := hasher.Digest(paths[i])
					results[i] = hashResult{digest: digest, size: size, err: err}
				}
			}()
		}

		for i := range paths {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	// Fold in scan order regardless of hash completion order
	for i, path := range paths {
		res := results[i]
		if res.err != nil {
			logger.Warn().Err(res.err).Str("path", path).Msg("excluding unreadable file from index")
			di.warnings = append(di.warnings, res.err.Error())
			continue
		}
		di.Add(FileRecord{
			AbsPath: path,
			Digest:  res.digest,
			Size:    res.size,
		})
	}

	logger.Debug().Int("files", di.fileCount).Int("buckets", di.skiplist.Length()).Msg("index built")
}

// DuplicateGroups returns every group with at least two members, in digest
// order
func (di *DuplicateIndex) DuplicateGroups() []*DuplicateGroup {
	var groups []*DuplicateGroup
	for node := di.skiplist.First(); node != nil; node = node.Next() {
		group := node.Item()
		if group.Count() >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// UpdateState advances the lifecycle context of the group with the given
// digest
func (di *DuplicateIndex) UpdateState(digest, state string) bool {
	return di.skiplist.UpdateContext(digest, state)
}

// GroupState returns the lifecycle context of the group with the given
// digest, or "" when no such group exists
func (di *DuplicateIndex) GroupState(digest string) string {
	node, state := di.skiplist.Find(digest)
	if node == nil {
		return ""
	}
	return state
}

// FileCount returns the number of records successfully indexed
func (di *DuplicateIndex) FileCount() int {
	return di.fileCount
}

// Warnings returns per-file problems encountered while building the index
func (di *DuplicateIndex) Warnings() []string {
	return di.warnings
}
