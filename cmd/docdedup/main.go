// Package main provides the docdedup command, a thin wrapper around the
// deduplication engine: it takes a deploy root, runs one deduplication pass,
// and prints the summary report.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	docdedup "github.com/docforge/docdedup/pkg"
)

var (
	configPath string
	overrides  []string
	verbosity  int
	debugFlags string
	dryRun     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docdedup <deploy-dir>",
		Short: "Deduplicate identical files across generated documentation targets",
		Long: `docdedup finds byte-identical files across the target subdirectories of a
generated documentation tree, promotes one copy of each to <deploy-dir>/shared/,
rewrites the textual references that pointed at the removed copies, and deletes
the redundant copies. Target-specific pages (index, search, navtree) are never
merged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDedupe,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to an INI config file")
	rootCmd.Flags().StringArrayVar(&overrides, "set", nil, "config override as key:value (repeatable)")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (repeatable, up to -vvv)")
	rootCmd.Flags().StringVar(&debugFlags, "debug", "", "comma-separated debug flags (scan,rewrite)")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without touching the tree")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docdedup: %v\n", err)
		os.Exit(1)
	}
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := docdedup.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}

	verboseConfig := cfg.GetVerboseConfig()
	if verbosity > 0 {
		verboseConfig.Level = verbosity
	}
	if err := docdedup.ValidateVerboseLevel(verboseConfig.Level); err != nil {
		return err
	}
	docdedup.SetupLogger(verboseConfig.Level)

	if debugFlags != "" {
		docdedup.SetDebugFlags(debugFlags)
	} else {
		docdedup.SetDebugFlags(verboseConfig.Debug)
	}

	// An invalid deploy root fails here, before any scan or mutation
	dedup, err := docdedup.NewDeduplicator(args[0], cfg)
	if err != nil {
		return err
	}
	dedup.SetDryRun(dryRun)

	fmt.Printf("Starting deduplication of documentation in: %s\n", dedup.Root())

	stats, err := dedup.Run()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println("Dry run: no files were modified.")
	}
	docdedup.WriteReport(os.Stdout, stats)
	return nil
}
