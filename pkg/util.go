package docdedup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// ParseHumanSize parses human-readable size strings (e.g., "2M", "512k", "1G")
func ParseHumanSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Convert to uppercase for consistent parsing
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	// Extract numeric part and suffix
	var numPart string
	var suffix string
	for i, char := range sizeStr {
		if char >= '0' && char <= '9' || char == '.' {
			numPart += string(char)
		} else {
			suffix = sizeStr[i:]
			break
		}
	}

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	var multiplier int64 = 1
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := int64(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if result > int64(^uint(0)>>1) { // Check for int overflow
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int(result), nil
}

// generateTempFileName generates a temporary filename with PID and timestamp
// in the same directory as finalPath, so the later rename stays on one
// filesystem
func generateTempFileName(finalPath, prefix string) string {
	pid := os.Getpid()
	timestamp := time.Now().UnixNano()
	return filepath.Join(filepath.Dir(finalPath),
		fmt.Sprintf(".%s-%d-%d.tmp", prefix, pid, timestamp))
}

// getSystemIOVMax returns the maximum iovec count per writev call
func getSystemIOVMax() (int, error) {
	// _SC_IOV_MAX constant for sysconf() - platform specific
	const SC_IOV_MAX = 60      // Linux value, may vary on other platforms
	const fallbackIOVMax = 1024 // Conservative default per golang/go#58623

	// Call sysconf directly using unix.Syscall (syscall 99 on Linux)
	r1, _, errno := unix.Syscall(99, uintptr(SC_IOV_MAX), 0, 0)
	if errno != 0 {
		return fallbackIOVMax, nil
	}

	iovMax := int(r1)

	// Validate the result is reasonable, fall back if not
	if iovMax <= 0 || iovMax > 1<<20 {
		return fallbackIOVMax, nil
	}

	return iovMax, nil
}

// writeFileVectored writes the given content segments to path with a single
// logical writev, chunked to respect the IOV_MAX limit, and syncs the file
// before returning
func writeFileVectored(path string, segments [][]byte, mode os.FileMode) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	var iovecs []syscall.Iovec
	totalSize := 0
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		iovecs = append(iovecs, syscall.Iovec{
			Base: &seg[0],
			Len:  uint64(len(seg)),
		})
		totalSize += len(seg)
	}

	if len(iovecs) > 0 {
		maxIovecs, err := getSystemIOVMax()
		if err != nil {
			return fmt.Errorf("failed to get system IOV_MAX: %w", err)
		}
		totalWritten := 0

		for offset := 0; offset < len(iovecs); offset += maxIovecs {
			end := offset + maxIovecs
			if end > len(iovecs) {
				end = len(iovecs)
			}

			chunk := iovecs[offset:end]

			nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
			if err != nil {
				return fmt.Errorf("failed to write chunk to %s: %w", path, err)
			}
			totalWritten += nw
		}

		if totalWritten != totalSize {
			return fmt.Errorf("write incomplete for %s: wrote %d bytes, expected %d",
				path, totalWritten, totalSize)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	return nil
}
