/*
Package locks serializes work on a single key, such as a drawing ID.

Within a process, each key gets a reference-counted mutex that is removed as soon
as nobody holds or waits for it. When a ports.DistributedLocker is configured the
manager also takes a distributed lock, so replicas sharing a backend do not
interleave writes to the same drawing.
*/
package locks
