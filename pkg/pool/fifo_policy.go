package pool

import "container/list"

// fifoEvictionPolicy evicts descriptors in the order they were
// opened, ignoring subsequent use. It shares the intrusive
// doubly-linked-list structure of lruEvictionPolicy but never
// reorders on NotifyUsed.
type fifoEvictionPolicy struct {
	order    *list.List
	elements map[DescriptorID]*list.Element
}

// NewFIFOEvictionPolicy creates an EvictionPolicy that evicts the
// descriptor that has been open the longest, regardless of use.
func NewFIFOEvictionPolicy() EvictionPolicy {
	return &fifoEvictionPolicy{
		order:    list.New(),
		elements: map[DescriptorID]*list.Element{},
	}
}

func (p *fifoEvictionPolicy) NotifyOpenedFile(id DescriptorID) {
	p.elements[id] = p.order.PushBack(id)
}

func (p *fifoEvictionPolicy) NotifyClosedFile(id DescriptorID) {
	if e, ok := p.elements[id]; ok {
		p.order.Remove(e)
		delete(p.elements, id)
	}
}

// NotifyUsed is a no-op: FIFO eviction order is determined solely by
// open order.
func (p *fifoEvictionPolicy) NotifyUsed(DescriptorID) {}

func (p *fifoEvictionPolicy) Oldest() (DescriptorID, bool) {
	if e := p.order.Front(); e != nil {
		return e.Value.(DescriptorID), true
	}
	return DescriptorID{}, false
}

func (p *fifoEvictionPolicy) Next(after DescriptorID) (DescriptorID, bool) {
	e, ok := p.elements[after]
	if !ok {
		return DescriptorID{}, false
	}
	if n := e.Next(); n != nil {
		return n.Value.(DescriptorID), true
	}
	return DescriptorID{}, false
}
