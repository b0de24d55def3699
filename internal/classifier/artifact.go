package classifier

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

// computeChecksum hashes the canonical JSON encoding of l with an empty
// Checksum field.
func computeChecksum(l *Logistic) (string, error) {
	c := *l
	c.Checksum = ""
	data, err := json.Marshal(&c)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Save writes l to path, creating parent directories. The checksum is
// recomputed and stored in l. The file is written to a temporary name and
// renamed into place.
func Save(path string, l *Logistic) error {
	if err := l.validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model: %w", err)
	}

	sum, err := computeChecksum(l)
	if err != nil {
		return fmt.Errorf("failed to compute checksum: %w", err)
	}
	l.Checksum = sum

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to install model: %w", err)
	}
	return nil
}

// Load reads and verifies the artifact at path.
func Load(path string) (*Logistic, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Model path comes from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var l Logistic
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	if l.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptArtifact, l.Version)
	}
	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("%w: feature names or parameters do not match", ErrCorruptArtifact)
	}

	sum, err := computeChecksum(&l)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	if sum != l.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptArtifact)
	}
	return &l, nil
}
