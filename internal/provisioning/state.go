package provisioning

import "github.com/imamik/nebuctl/internal/distro"

// Stage is how far a run has progressed.
type Stage int

const (
	StageDisconnected Stage = iota
	StageConnected
	StageDistroKnown
	StageDependenciesEnsured
	StageArtifactsDeployed
	StageServiceActive
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageDisconnected:
		return "disconnected"
	case StageConnected:
		return "connected"
	case StageDistroKnown:
		return "distro-known"
	case StageDependenciesEnsured:
		return "dependencies-ensured"
	case StageArtifactsDeployed:
		return "artifacts-deployed"
	case StageServiceActive:
		return "service-active"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ServiceAction is what the service phase did to the unit.
type ServiceAction string

const (
	ServiceInstalled ServiceAction = "installed"
	ServiceRestarted ServiceAction = "restarted"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes.
type State struct {
	Stage  Stage
	Distro distro.Family
	// Platform is the release platform of the host, e.g. "linux-amd64".
	// Empty when the nebula binaries were already present.
	Platform string
	// Installed lists the binaries this run installed.
	Installed []string
	Service   ServiceAction
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{Stage: StageDisconnected}
}
