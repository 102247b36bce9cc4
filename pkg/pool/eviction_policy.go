package pool

// EvictionPolicy decides which descriptor to close when the Manager
// needs to free a slot to open a new one. Implementations observe
// three life cycle events and are asked to reorder themselves on
// every use:
//
//   - NotifyOpenedFile is called once a descriptor has been
//     successfully opened and registered.
//   - NotifyClosedFile is called once a descriptor has been closed,
//     whether as part of normal release or eviction.
//   - NotifyUsed is called every time a descriptor's use is reported
//     (see Manager.NotifyUsed); the policy may reorder its internal
//     queue in response.
//
// Eviction itself is driven by the Manager, which holds the lock that
// serialises access to the policy's internal structure. The Manager
// walks candidates oldest-to-newest (in whatever order the policy
// considers "oldest") using Oldest and Next, invoking each candidate's
// close callback outside of any lock, and asking the policy for the
// next candidate only when the previous one refused to close. This
// keeps the callback-outside-mutex handoff required by the Manager
// (see manager.go) entirely outside the policy's own bookkeeping.
//
// All methods are called with the Manager's mutex held by the caller;
// implementations do not need to do their own locking.
type EvictionPolicy interface {
	NotifyOpenedFile(id DescriptorID)
	NotifyClosedFile(id DescriptorID)
	NotifyUsed(id DescriptorID)

	// Oldest starts a fresh eviction walk and returns the first
	// candidate to try, or false if there are no candidates at all.
	Oldest() (DescriptorID, bool)

	// Next continues an eviction walk started by Oldest, returning
	// the next candidate after the one that just refused to close,
	// or false if no more candidates remain.
	Next(after DescriptorID) (DescriptorID, bool)
}
