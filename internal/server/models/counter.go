package models

// SequenceCounter is a single named allocator counter. It holds the highest
// sequence value ever assigned in its namespace and is mutated only by the
// identifier allocator.
type SequenceCounter struct {
	Name  string
	Value int64
}
