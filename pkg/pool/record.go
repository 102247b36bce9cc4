package pool

import (
	"time"
)

// descriptorRecord is the Manager's bookkeeping entry for a single
// open descriptor. It intentionally does not store the descriptor
// value itself (of generic type T): ownership of the descriptor lives
// with the Handler that opened it, either in its idle set or inside a
// live Accessor. The record only tracks the metadata the Manager and
// the eviction policy need.
//
// A descriptorRecord exists in the Manager's table from the moment
// Open() returns until the owning Handler has released the descriptor
// and Close() has been called for its id.
type descriptorRecord struct {
	id           DescriptorID
	path         string
	isWrite      bool
	lastUsed     time.Time
	useCount     uint64
	requestClose func() bool
}
