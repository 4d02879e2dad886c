package common

// CountedBool is a stacked flag: every Set(true) must be matched by a
// Set(false) before the value turns false again.
type CountedBool struct {
	count int
}

// NewCountedBool returns a flag that starts as v.
func NewCountedBool(v bool) *CountedBool {
	b := &CountedBool{}
	if v {
		b.count = 1
	}
	return b
}

func (b *CountedBool) Value() bool {
	if b == nil {
		return false
	}
	return b.count > 0
}

func (b *CountedBool) Set(v bool) {
	if b == nil {
		return
	}
	if v {
		b.count++
		return
	}
	b.count--
}

// Reset drops every holder.
func (b *CountedBool) Reset() {
	if b == nil {
		return
	}
	b.count = 0
}
