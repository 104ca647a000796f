// File path: internal/index/fingerprint_io.go
package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wolfthemes/supportkb/internal/kb"
)

func readFingerprint(path string) (kb.Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fingerprint sidecar: %w", err)
	}
	var fingerprint kb.Fingerprint
	if err := json.Unmarshal(data, &fingerprint); err != nil {
		return nil, fmt.Errorf("decode fingerprint sidecar: %w", err)
	}
	return fingerprint, nil
}

func writeFingerprint(path string, fingerprint kb.Fingerprint) error {
	data, err := json.Marshal(fingerprint)
	if err != nil {
		return fmt.Errorf("encode fingerprint sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fingerprint sidecar: %w", err)
	}
	return nil
}
