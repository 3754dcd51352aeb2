package physics

import (
	"encoding/binary"
	"hash/fnv"
)

// SeedModulus bounds image-derived seeds to [0, SeedModulus).
const SeedModulus = 1204

// SeedFromPixels hashes an image's dimensions and pixel bytes into a seed.
func SeedFromPixels(width, height int, pix []byte) int {
	h := fnv.New64a()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(width))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(height))
	h.Write(dims[:])
	h.Write(pix)
	return int(h.Sum64() % SeedModulus)
}
