// Package provisioning turns a reachable Linux host into a running nebula
// node.
//
// A run is a fixed sequence of phases over one remote session:
//
//	validation -> connect -> distro -> dependencies -> artifacts -> service
//
// Each phase past validation advances the run's [Stage], from
// StageDisconnected to StageServiceActive. Any failure aborts the run in
// StageFailed; nothing already applied on the host is rolled back, but
// every phase is safe to repeat, so a run can simply be started again.
//
// # Core Types
//
// Context carries the session, the deployment, the observer and timeouts.
// Phase defines a step with Name() and Provision() methods.
// State accumulates what the phases learned and did.
// Orchestrator owns the session for the length of a run and closes it on
// every exit path.
package provisioning
