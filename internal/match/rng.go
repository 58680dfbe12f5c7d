package match

import "hash/fnv"

// deriveSeed mixes a parent seed and a stream identifier into a new seed so
// that cohorts and attempts draw from uncorrelated sources. SplitMix64
// finalizer constants.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// categoryStream hashes a category tag into a stream identifier.
func categoryStream(category string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(category))
	return h.Sum64()
}
