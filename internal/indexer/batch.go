package indexer

// Batch is a half-open range [Start, End) of corpus indices.
type Batch struct {
	Start, End int
}

// Batches splits n items into consecutive windows of at most size items.
func Batches(n, size int) []Batch {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = n
	}
	out := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, Batch{Start: start, End: min(start+size, n)})
	}
	return out
}
