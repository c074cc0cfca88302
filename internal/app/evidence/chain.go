package evidence

import (
	"fmt"

	"github.com/attestly/policytrail/internal/domain"
)

type chainEntry struct {
	Hash  string
	Entry domain.Entry
}

func buildEntryIndex(blobs []EntryBlob, decoder Decoder, hasher Hasher) (map[string]chainEntry, error) {
	index := make(map[string]chainEntry, len(blobs))
	for _, blob := range blobs {
		entry, err := decoder.Decode(blob.Bytes)
		if err != nil {
			return nil, err
		}
		hash := hasher.SumHex(blob.Bytes)
		index[hash] = chainEntry{
			Hash:  hash,
			Entry: entry,
		}
	}
	return index, nil
}

// buildEntryChain walks parent hashes from the head down to the first
// entry. The returned slice is head-first.
func buildEntryChain(headHash string, index map[string]chainEntry) ([]chainEntry, error) {
	var chain []chainEntry
	visited := make(map[string]struct{})
	current := headHash
	for current != "" {
		if _, ok := visited[current]; ok {
			return nil, fmt.Errorf("cycle detected at %s", current)
		}
		visited[current] = struct{}{}

		entry, ok := index[current]
		if !ok {
			return nil, fmt.Errorf("missing entry %s", current)
		}
		chain = append(chain, entry)
		current = entry.Entry.ParentHash
	}
	return chain, nil
}
