package docdedup

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "sha1":
		return &HashAlgorithm{
			Name:    "sha1",
			TypeID:  HashTypeSHA1,
			Size:    HashSizeSHA1,
			NewFunc: func() hash.Hash { return sha1.New() },
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			TypeID:  HashTypeSHA256,
			Size:    HashSizeSHA256,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case "sha512":
		return &HashAlgorithm{
			Name:    "sha512",
			TypeID:  HashTypeSHA512,
			Size:    HashSizeSHA512,
			NewFunc: func() hash.Hash { return sha512.New() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// GetHashAlgorithmByType returns the hash algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	switch typeID {
	case HashTypeSHA1:
		return GetHashAlgorithm("sha1")
	case HashTypeSHA256:
		return GetHashAlgorithm("sha256")
	case HashTypeSHA512:
		return GetHashAlgorithm("sha512")
	default:
		return nil, fmt.Errorf("unsupported hash type ID: %d", typeID)
	}
}

// HashFileBuffered calculates the hash of a file by streaming it through a
// bounded buffer, so memory use is independent of file size
func HashFileBuffered(filePath string, algorithm *HashAlgorithm, bufferSize int) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)

	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashFileToHexString calculates the hash of a file and returns it as a hex string
func HashFileToHexString(filePath string, algorithm *HashAlgorithm, bufferSize int) (string, error) {
	hashBytes, err := HashFileBuffered(filePath, algorithm, bufferSize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hashBytes), nil
}

// Hasher computes content digests for files with a fixed algorithm and
// read-buffer size.
type Hasher struct {
	algorithm  *HashAlgorithm
	bufferSize int
}

// NewHasher creates a hasher for the given algorithm. A non-positive buffer
// size falls back to 2MB.
func NewHasher(algorithm *HashAlgorithm, bufferSize int) *Hasher {
	if bufferSize <= 0 {
		bufferSize = 2 * 1024 * 1024
	}
	return &Hasher{
		algorithm:  algorithm,
		bufferSize: bufferSize,
	}
}

// Algorithm returns the configured hash algorithm
func (h *Hasher) Algorithm() *HashAlgorithm {
	return h.algorithm
}

// Digest returns the hex content digest and size of the file at path. Any
// failure is reported as a *ReadError naming the offending path; the caller
// excludes the file from indexing and continues.
func (h *Hasher) Digest(path string) (string, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, &ReadError{Path: path, Err: err}
	}

	digest, err := HashFileToHexString(path, h.algorithm, h.bufferSize)
	if err != nil {
		return "", 0, &ReadError{Path: path, Err: err}
	}

	return digest, info.Size(), nil
}
