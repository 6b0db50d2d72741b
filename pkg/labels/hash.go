package labels

// mix32 computes a non-trivial hash of a 32-bit node id.
//
// Node ids in real datasets are frequently sequential or otherwise carry
// very little entropy in the low bits, which would collapse a table of
// power-of-two size into a handful of slots if the raw id were used as the
// hash. Two rounds of a multiplicative xor-shift avalanche fix that: every
// input bit influences every output bit.
func mix32(x uint32) uint32 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = (x >> 16) ^ x
	return x
}
