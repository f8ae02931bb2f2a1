package b3

import (
	"encoding/hex"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// idLen is the number of hex characters kept for a source id.
const idLen = 16

func HashReader(r io.Reader) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("calculating blake3 hash: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SourceID derives a stable source id from the content, so adding the same
// bytes twice yields the same id.
func SourceID(r io.Reader) (string, error) {
	sum, err := HashReader(r)
	if err != nil {
		return "", fmt.Errorf("source id: %w", err)
	}
	return sum[:idLen], nil
}
