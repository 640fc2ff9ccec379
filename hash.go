package qsearch

// HashFunc maps a register value to its hash. Both live in [0, 2^width).
type HashFunc func(x uint64) uint64

/*
MixHash returns a small multiplicative mixing hash over width bits. It is a
toy: cheap to evaluate on every basis state and not injective, so some
targets have several preimages and some have none.
*/
func MixHash(width int) HashFunc {
	mask := uint64(1)<<width - 1
	// A zero shift would cancel x against itself.
	shift := max(width/2, 1)

	return func(x uint64) uint64 {
		x &= mask
		x ^= x >> 3
		x *= 0x9e3779b1
		x ^= x >> shift
		return x & mask
	}
}

// IdentityHash hashes every value to itself, so every in-range target has exactly one preimage.
func IdentityHash(width int) HashFunc {
	mask := uint64(1)<<width - 1

	return func(x uint64) uint64 {
		return x & mask
	}
}
