package heightmap

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// GridDigest is a stable content hash of a Grid's buffers, used to assert
// spec §5's P5 property: the same (seed, config) reproduces bit-identical
// output across runs.
//
// Adapted from the teacher's hashImage (pkg/visualtest/snapshot.go): same
// "feed every element through SHA-256 in a fixed traversal order" idiom,
// retargeted from RGBA pixels to the grid's float32/int8/flag buffers.
func GridDigest(g *Grid) string {
	h := sha256.New()
	var buf [4]byte

	writeFloat := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}

	for _, v := range g.Height {
		writeFloat(v)
	}
	for _, v := range g.LevelID {
		h.Write([]byte{byte(v)})
	}
	for _, v := range g.Flags {
		binary.LittleEndian.PutUint16(buf[:2], uint16(v))
		h.Write(buf[:2])
	}
	for _, v := range g.RoadID {
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		h.Write(buf[:])
	}
	for _, v := range g.Boundary {
		h.Write([]byte{byte(v)})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HeightfieldDigest hashes a Heightfield's values, for asserting P5 at the
// pre-level-quantization stage (e.g. "noise alone reproduces").
func HeightfieldDigest(hf *Heightfield) string {
	h := sha256.New()
	var buf [4]byte
	for _, v := range hf.Values {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CompareDigests reports whether two digests match, and is the single
// assertion point P5-style determinism tests should use so the comparison
// logic lives in one place.
func CompareDigests(a, b string) bool { return a == b }
