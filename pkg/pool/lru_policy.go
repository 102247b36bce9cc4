package pool

import "container/list"

// lruEvictionPolicy is the default EvictionPolicy. It maintains an
// intrusive doubly-linked list of ids ordered oldest first and a map
// from id to list element for O(1) relocation, exactly as described
// for the default policy: NotifyOpenedFile appends to the back,
// NotifyUsed unlinks and re-appends to the back, NotifyClosedFile
// unlinks, and eviction walks start from the front.
//
// Because new entries and freshly-used entries are both appended to
// the back, ties are broken by insertion order: among descriptors
// with an equally stale last-used time, the one opened first is
// evicted first.
type lruEvictionPolicy struct {
	order    *list.List
	elements map[DescriptorID]*list.Element
}

// NewLRUEvictionPolicy creates an EvictionPolicy that evicts the least
// recently used descriptor first.
func NewLRUEvictionPolicy() EvictionPolicy {
	return &lruEvictionPolicy{
		order:    list.New(),
		elements: map[DescriptorID]*list.Element{},
	}
}

func (p *lruEvictionPolicy) NotifyOpenedFile(id DescriptorID) {
	p.elements[id] = p.order.PushBack(id)
}

func (p *lruEvictionPolicy) NotifyClosedFile(id DescriptorID) {
	if e, ok := p.elements[id]; ok {
		p.order.Remove(e)
		delete(p.elements, id)
	}
}

func (p *lruEvictionPolicy) NotifyUsed(id DescriptorID) {
	if e, ok := p.elements[id]; ok {
		p.order.MoveToBack(e)
	}
}

func (p *lruEvictionPolicy) Oldest() (DescriptorID, bool) {
	if e := p.order.Front(); e != nil {
		return e.Value.(DescriptorID), true
	}
	return DescriptorID{}, false
}

func (p *lruEvictionPolicy) Next(after DescriptorID) (DescriptorID, bool) {
	e, ok := p.elements[after]
	if !ok {
		return DescriptorID{}, false
	}
	if n := e.Next(); n != nil {
		return n.Value.(DescriptorID), true
	}
	return DescriptorID{}, false
}
