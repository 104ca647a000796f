// File path: internal/kb/fingerprint.go
package kb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
)

// Fingerprint maps a relative file path (slash-separated) to the sha256 hex
// digest of its content, covering every regular file under the data root.
// Two fingerprints are compared structurally; any added, removed, or modified
// file counts as a change and invalidates the whole index.
type Fingerprint map[string]string

// ComputeFingerprint walks root in lexical order and hashes every regular
// file. Hashing is streamed so large source files never load whole into
// memory. The output is reproducible across runs on an unchanged tree.
// Directories named in exclude are skipped entirely, so derived artifacts
// living under the data root never feed back into the fingerprint.
func ComputeFingerprint(root string, exclude ...string) (Fingerprint, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, dir := range exclude {
		if dir != "" {
			skip[filepath.Clean(dir)] = struct{}{}
		}
	}
	fp := make(Fingerprint)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if _, ok := skip[filepath.Clean(path)]; ok {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		sum, hashErr := hashFile(path)
		if hashErr != nil {
			return hashErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		fp[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", root, err)
	}
	return fp, nil
}

// Changed reports whether the two fingerprints differ structurally.
func Changed(a, b Fingerprint) bool {
	return !maps.Equal(a, b)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
