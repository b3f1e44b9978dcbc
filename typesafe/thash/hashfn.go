package thash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

func fold(x uint64) uint32 {
	return uint32(x) ^ uint32(x>>32)
}

// HashString 以 xxhash 計算字串的 32 位元 hash
func HashString(s string) uint32 {
	return fold(xxhash.Sum64String(s))
}

func HashBytes(b []byte) uint32 {
	return fold(xxhash.Sum64(b))
}

func HashUint64(v uint64) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return fold(xxhash.Sum64(b[:]))
}
