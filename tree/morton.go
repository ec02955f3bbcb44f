package tree

// spreadBits3 spaces the low 10 bits of v two bits apart, preparing one axis
// of a 30-bit Morton key.
func spreadBits3(v uint32) uint32 {
	v &= 0x3ff
	v = (v | v<<16) & 0x30000ff
	v = (v | v<<8) & 0x300f00f
	v = (v | v<<4) & 0x30c30c3
	v = (v | v<<2) & 0x9249249
	return v
}

// mortonKey interleaves three 10-bit axis buckets into a 30-bit Morton key.
func mortonKey(x, y, z uint32) uint32 {
	return spreadBits3(x) | spreadBits3(y)<<1 | spreadBits3(z)<<2
}

const mortonBuckets = 1 << 10

// bucket quantizes v into [0, mortonBuckets) against the axis extent.
func bucket(v, lo, hi float32) uint32 {
	if hi <= lo {
		return 0
	}
	b := uint32((v - lo) / (hi - lo) * (mortonBuckets - 1))
	if b > mortonBuckets-1 {
		b = mortonBuckets - 1
	}
	return b
}
