package core

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Merkle commitments over sequences of committable values. Leaves are
// the Blake2b-512 digests of each value's canonical bytes; internal
// nodes are the digest of the concatenation of their children. Roots
// and path elements are 64-byte values.

// DigestLength is the byte length of leaf digests, internal nodes and
// roots
const DigestLength = blake2b.Size

// Byteser is the capability of producing canonical bytes for hashing.
// FieldElement satisfies it; raw byte strings are wrapped with
// RawBytes.
type Byteser interface {
	Bytes() []byte
}

// RawBytes wraps an opaque byte string as a committable value
type RawBytes []byte

// Bytes returns the wrapped bytes as-is
func (rb RawBytes) Bytes() []byte {
	return []byte(rb)
}

// merkleHash is Blake2b-512 over the concatenation of the inputs
func merkleHash(data ...[]byte) []byte {
	h, _ := blake2b.New512(nil)
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// hashLeaves digests every committed value once
func hashLeaves(data []Byteser) [][]byte {
	leaves := make([][]byte, len(data))
	for i, item := range data {
		leaves[i] = merkleHash(item.Bytes())
	}
	return leaves
}

// commitLeaves computes the root over already-hashed leaves
func commitLeaves(leaves [][]byte) []byte {
	if len(leaves) == 1 {
		return leaves[0]
	}
	half := len(leaves) / 2
	return merkleHash(commitLeaves(leaves[:half]), commitLeaves(leaves[half:]))
}

// MerkleCommit commits to a sequence of values, returning the 64-byte
// root. The number of values must be a power of two.
func MerkleCommit(data []Byteser) ([]byte, error) {
	if len(data) == 0 || len(data)&(len(data)-1) != 0 {
		return nil, fmt.Errorf("length must be power of two")
	}
	return commitLeaves(hashLeaves(data)), nil
}

// openLeaves returns the authentication path over already-hashed
// leaves, sibling hashes from the leaf level upward
func openLeaves(index int, leaves [][]byte) [][]byte {
	if len(leaves) == 1 {
		return [][]byte{}
	}
	if len(leaves) == 2 {
		return [][]byte{leaves[1-index]}
	}
	half := len(leaves) / 2
	if index < half {
		return append(openLeaves(index, leaves[:half]), commitLeaves(leaves[half:]))
	}
	return append(openLeaves(index-half, leaves[half:]), commitLeaves(leaves[:half]))
}

// MerkleOpen returns the authentication path for the value at the given
// index: the sibling hash at every level from the leaves upward, of
// length log2(len(data))
func MerkleOpen(index int, data []Byteser) ([][]byte, error) {
	if len(data) == 0 || len(data)&(len(data)-1) != 0 {
		return nil, fmt.Errorf("length must be power of two")
	}
	if index < 0 || index >= len(data) {
		return nil, fmt.Errorf("index not in range")
	}
	return openLeaves(index, hashLeaves(data)), nil
}

// MerkleVerify checks an authentication path: the root is recomputed by
// hashing (leaf, sibling) when the current index bit is 0 and
// (sibling, leaf) when it is 1, shifting the index right at each step.
// The index must lie in [0, 2^len(path)).
func MerkleVerify(root []byte, index int, path [][]byte, item Byteser) (bool, error) {
	if len(path) >= 63 || index < 0 || index >= 1<<len(path) {
		return false, fmt.Errorf("index not in range")
	}

	node := merkleHash(item.Bytes())
	for _, sibling := range path {
		if index%2 == 0 {
			node = merkleHash(node, sibling)
		} else {
			node = merkleHash(sibling, node)
		}
		index >>= 1
	}
	return bytes.Equal(root, node), nil
}
