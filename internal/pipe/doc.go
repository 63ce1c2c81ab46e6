// Package pipe implements the named, unbuffered channels that plugins use to
// talk to each other.
//
// A pipe has at most one provider (the source answering Request) and any
// number of subscribers (the destinations notified on Render). Pipes are
// created on first reference, so no operation fails because a name is new.
//
// # Dispatch
//
// Dispatch is synchronous: Render calls every subscriber before it returns
// and Request returns whatever the provider returned. Nothing is queued or
// copied; values are passed through untouched.
//
// # Reentrancy
//
// Subscribers and providers may call back into the same Table, including
// Provide and Subscribe on the pipe currently being dispatched. The table's
// lock only guards its bookkeeping and is released before user code runs.
// Render iterates over a snapshot of the subscribers taken when the pass
// starts, so subscribers added during a pass are first called on the next one.
package pipe
