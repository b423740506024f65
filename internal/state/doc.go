// Package state keeps the small files a control host shares between runs:
// the network block, the lighthouse's public address and the machine-id
// counter. The counter is only reachable through a Lease, which holds an
// exclusive lock on it for the duration of a run.
package state
