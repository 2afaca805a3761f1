package incremental

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns the xxHash64 of a script's contents as 16 hex digits.
func Fingerprint(content []byte) string {
	return formatSum(xxhash.Sum64(content))
}

// FingerprintFile streams path through the same hash as Fingerprint.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return formatSum(d.Sum64()), nil
}

func formatSum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
