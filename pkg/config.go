package docdedup

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the docdedup configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// DedupeConfig represents deduplication policy configuration
type DedupeConfig struct {
	SharedDir string   // Name of the shared directory under the deploy root
	Exclude   []string // Basename patterns never deduplicated
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// RewriteConfig represents reference rewriting configuration
type RewriteConfig struct {
	Extensions []string // File extensions subject to reference rewriting
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Hash read buffer size (default: "2M")
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// LoadConfig loads configuration from the given file. A missing path (or an
// empty path) yields built-in defaults without writing anything to disk, so
// the scanned tree is never touched by configuration handling.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath == "" {
		cfg.ini = ini.Empty()
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg.ini = iniFile

	return cfg, nil
}

// GetDedupeConfig returns the deduplication policy configuration
func (c *Config) GetDedupeConfig() *DedupeConfig {
	dedupeConfig := &DedupeConfig{
		SharedDir: DefaultSharedDirName, // fallback default
		Exclude:   DefaultExcludePatterns,
	}

	if c.ini.HasSection("dedupe") {
		section := c.ini.Section("dedupe")
		if section.HasKey("shared_dir") {
			if dir := section.Key("shared_dir").String(); dir != "" {
				dedupeConfig.SharedDir = dir
			}
		}
		if section.HasKey("exclude") {
			if patterns := section.Key("exclude").Strings(","); len(patterns) > 0 {
				dedupeConfig.Exclude = patterns
			}
		}
	}

	return dedupeConfig
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: "sha256", // fallback default
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetRewriteConfig returns the reference rewriting configuration
func (c *Config) GetRewriteConfig() *RewriteConfig {
	rewriteConfig := &RewriteConfig{
		Extensions: DefaultRewriteExtensions, // fallback default
	}

	if c.ini.HasSection("rewrite") {
		section := c.ini.Section("rewrite")
		if section.HasKey("extensions") {
			if exts := section.Key("extensions").Strings(","); len(exts) > 0 {
				rewriteConfig.Extensions = exts
			}
		}
	}

	return rewriteConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: 4,    // fallback default
		HashBuffer:  "2M", // fallback default - 2MB buffer for streamed hashing
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,  // fallback default
		Debug: "", // fallback default
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the configuration.
// Accepts strings like "shared_dir:common", "default:sha512", "level:2",
// "hash_workers:8"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "shared_dir":
			c.ini.Section("dedupe").Key("shared_dir").SetValue(value)
		case "exclude":
			c.ini.Section("dedupe").Key("exclude").SetValue(value)
		case "default":
			c.ini.Section("filehash").Key("default").SetValue(value)
		case "extensions":
			c.ini.Section("rewrite").Key("extensions").SetValue(value)
		case "hash_workers":
			c.ini.Section("performance").Key("hash_workers").SetValue(value)
		case "hash_buffer":
			c.ini.Section("performance").Key("hash_buffer").SetValue(value)
		case "level":
			c.ini.Section("verbose").Key("level").SetValue(value)
		case "debug":
			c.ini.Section("verbose").Key("debug").SetValue(value)
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: shared_dir, exclude, default, extensions, hash_workers, hash_buffer, level, debug)", key)
		}
	}

	return nil
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	switch strings.ToLower(algorithm) {
	case "sha1", "sha256", "sha512":
		return nil
	default:
		return fmt.Errorf("unsupported hash algorithm: %s (supported: sha1, sha256, sha512)", algorithm)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > 64 {
		return fmt.Errorf("hash workers should not exceed 64, got: %d", workers)
	}
	return nil
}
