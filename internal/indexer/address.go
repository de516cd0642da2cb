package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// ContentHash returns the stable identity of a chunk: the hex SHA-256 of
// "filePath:chunkIndex:content". Identical inputs always produce the same
// hash, so re-ingesting unchanged files is a no-op at the store.
func ContentHash(filePath string, chunkIndex int, content string) string {
	h := sha256.New()
	h.Write([]byte(filePath))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(chunkIndex)))
	h.Write([]byte{':'})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
