package etl

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/cockroachdb/errors"
)

// ChunkFilter partitions UPRN-keyed rows into disjoint, property-complete
// chunks by stable hash. Every record for a given UPRN lands in exactly one
// chunk, so chunk outputs concatenate without cross-chunk deduplication.
type ChunkFilter struct {
	NumChunks int
	ChunkID   int
}

// NewChunkFilter validates the partition parameters. Violated bounds are a
// configuration error, not a runtime failure.
func NewChunkFilter(numChunks, chunkID int) (ChunkFilter, error) {
	if numChunks < 1 {
		return ChunkFilter{}, errors.Newf("num_chunks must be >= 1, got %d", numChunks)
	}
	if chunkID < 0 || chunkID >= numChunks {
		return ChunkFilter{}, errors.Newf("chunk_id must be in range [0, %d), got %d", numChunks, chunkID)
	}
	return ChunkFilter{NumChunks: numChunks, ChunkID: chunkID}, nil
}

// Includes reports whether the UPRN belongs to this chunk.
func (f ChunkFilter) Includes(uprn int64) bool {
	if f.NumChunks <= 1 {
		return true
	}
	return hashUPRN(uprn)%uint64(f.NumChunks) == uint64(f.ChunkID)
}

func hashUPRN(uprn int64) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(uprn))
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}
