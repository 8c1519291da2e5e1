package experiment

import "unicode/utf16"

// Bucket maps an arbitrary string to a bucket in [0, 99]. The arithmetic is
// fixed: iterate the string's UTF-16 code units, keep a 32-bit signed
// accumulator updated as h = (h << 5) - h + code with wraparound, then take
// the absolute value modulo 100. Clients compute the same hash independently,
// so server and client must agree bit-for-bit; do not "simplify" this.
func Bucket(s string) int {
	var h int32
	for _, code := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(code)
	}

	// abs in 64-bit space: abs(MinInt32) must stay positive, not wrap.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % 100)
}

// BucketFor returns the bucket for a user within an experiment. The hash
// input is always "<experiment>.<user>".
func BucketFor(experiment, userID string) int {
	return Bucket(experiment + "." + userID)
}
