package superblock

// Pool is a LIFO free list of Blocks, recycled across builds so that
// each partition step does not pay for a fresh allocation per subtree
// (spec §9 "SuperBlock free list"). The zero value is ready to use.
type Pool struct {
	free []*Block
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{}
}

// NewRoot acquires a Block from the pool (or allocates one) and
// initializes it as a fresh root spanning bounds.
func (p *Pool) NewRoot(bounds Box) *Block {
	b := p.acquire()
	b.Bounds = bounds
	return b
}

// acquire pops a recycled Block off the free list, zeroing its
// contents, or allocates a new one if the pool is empty.
func (p *Pool) acquire() *Block {
	n := len(p.free)
	if n == 0 {
		return &Block{}
	}
	b := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	*b = Block{}
	return b
}

// Release recycles block and, recursively, its entire subtree back
// into the pool (spec §9: subtrees are freed wholesale once a
// partition step has consumed them).
func (p *Pool) Release(b *Block) {
	if b == nil {
		return
	}
	p.Release(b.Child[0])
	p.Release(b.Child[1])
	b.Child[0], b.Child[1] = nil, nil
	b.Parent = nil
	b.stack = b.stack[:0]
	p.free = append(p.free, b)
}
