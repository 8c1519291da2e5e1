package experiment

// Variant is one named outcome of an experiment with the weight controlling
// its share of buckets.
type Variant struct {
	Key    string `json:"key"`
	Weight int    `json:"weight"`
}

// Experiment is a named variant-weight configuration, typically distributed
// by the server.
type Experiment struct {
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Pick walks the variants accumulating weight and assigns the bucket to the
// first variant whose cumulative weight exceeds it. Weights summing under
// 100 leave high buckets unmatched; those fall back to the first variant.
func Pick(variants []Variant, bucket int) string {
	cumulative := 0
	for _, v := range variants {
		cumulative += v.Weight
		if bucket < cumulative {
			return v.Key
		}
	}
	if len(variants) > 0 {
		return variants[0].Key
	}
	return ""
}

// SplitEvenly synthesizes a weight configuration from a bare variant-key
// list: floor(100/len) per key, remainder added to the first key.
func SplitEvenly(keys []string) []Variant {
	n := len(keys)
	if n == 0 {
		return nil
	}

	base := 100 / n
	remainder := 100 - base*n

	variants := make([]Variant, n)
	for i, key := range keys {
		weight := base
		if i == 0 {
			weight += remainder
		}
		variants[i] = Variant{Key: key, Weight: weight}
	}
	return variants
}
