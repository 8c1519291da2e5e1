package experiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket_KnownValues(t *testing.T) {
	// Hand-computed with h = (h << 5) - h + code over UTF-16 code units.
	assert.Equal(t, 0, Bucket(""))
	assert.Equal(t, 97, Bucket("a"))  // 97
	assert.Equal(t, 5, Bucket("ab"))  // 97*31+98 = 3105
	assert.Equal(t, 54, Bucket("abc")) // 3105*31+99 = 96354
}

func TestBucket_UTF16CodeUnits(t *testing.T) {
	// The emoji is a surrogate pair: 0xD83D 0xDE00 must be hashed as two
	// code units, not one rune. 55357*31 + 56832 = 1772899.
	assert.Equal(t, 99, Bucket("\U0001F600"))
}

func TestBucket_Range(t *testing.T) {
	inputs := []string{
		"checkout.user_123",
		"hero-banner.anonymous",
		"pricing_test.9f86d081884c7d659a2feaa0c55ad015",
	}
	for i := 0; i < 1000; i++ {
		inputs = append(inputs, fmt.Sprintf("experiment_%d.user_%d", i, i*7919))
	}

	for _, in := range inputs {
		b := Bucket(in)
		assert.GreaterOrEqual(t, b, 0, "input %q", in)
		assert.LessOrEqual(t, b, 99, "input %q", in)
	}
}

func TestBucket_Deterministic(t *testing.T) {
	for _, in := range []string{"", "a", "checkout.user_123", "exp.😀"} {
		assert.Equal(t, Bucket(in), Bucket(in))
	}
}

func TestBucketFor_JoinsWithDot(t *testing.T) {
	assert.Equal(t, Bucket("checkout.user_123"), BucketFor("checkout", "user_123"))
}
