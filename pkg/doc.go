// Package docdedup finds byte-identical files across the target
// subdirectories of a generated documentation tree, promotes one copy of each
// to a shared directory, rewrites the textual references that pointed at the
// removed copies, and deletes the redundant copies.
//
// # Core API
//
// The main entry point is Deduplicator, which runs one pass over a deploy
// root:
//
//	cfg, _ := docdedup.LoadConfig("")
//	dedup, err := docdedup.NewDeduplicator("/path/to/deploy", cfg)
//	if err != nil {
//		return err
//	}
//	stats, err := dedup.Run()
//	if err != nil {
//		return err
//	}
//	docdedup.WriteReport(os.Stdout, stats)
//
// # Safety Ordering
//
// For each accepted duplicate group the engine writes and verifies the
// durable shared copy first, then rewrites all references, and only then
// deletes the originals. Any failure aborts just that group, leaving a tree
// where every remaining file still resolves.
//
// # Configuration
//
// Behavior is driven by an INI config file plus command-line style
// overrides:
//
//	cfg.ApplyOverrides([]string{"shared_dir:common", "default:sha512"})
//
// Enable debug output:
//
//	docdedup.SetDebugFlags("scan,rewrite")
//	docdedup.SetupLogger(2)
//
// # Note on Internal API
//
// External consumers should primarily use Deduplicator, Stats, WriteReport,
// and the configuration functions. Types like DuplicateIndex, Policy, and
// Rewriter are building blocks of the pipeline and their interfaces may
// change.
package docdedup
