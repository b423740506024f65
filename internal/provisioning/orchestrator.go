package provisioning

import (
	"context"

	"github.com/imamik/nebuctl/internal/config"
	"github.com/imamik/nebuctl/internal/platform/ssh"
)

// DefaultPhases returns the phases of a run in order.
func DefaultPhases() []Phase {
	return []Phase{
		NewValidationPhase(),
		ConnectPhase{},
		DistroPhase{},
		DependenciesPhase{},
		ArtifactsPhase{},
		ServicePhase{},
	}
}

// Orchestrator runs the phases for one host at a time.
type Orchestrator struct {
	Observer Observer
	Timeouts *config.Timeouts
	// Phases overrides DefaultPhases when set.
	Phases []Phase
}

// NewOrchestrator creates an orchestrator logging to the console with
// timeouts from the environment.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}

// Run provisions the host behind remote. The session is owned by the run
// and is closed before Run returns, whatever the outcome. The returned state
// is never nil and ends in StageServiceActive or StageFailed.
func (o *Orchestrator) Run(ctx context.Context, target ssh.Target, remote Session, deployment *Deployment) (*State, error) {
	fields := map[string]string{"host": target.String()}
	if deployment != nil {
		fields["role"] = string(deployment.Role)
	}

	pctx := NewContext(ctx, target, remote, deployment)
	pctx.Observer = o.Observer.WithFields(fields)
	pctx.Timeouts = o.Timeouts

	if remote != nil {
		defer func() {
			if err := remote.Close(); err != nil {
				pctx.Observer.Printf("failed to close session to %s: %v", remote.Host(), err)
			}
		}()
	}

	phases := o.Phases
	if phases == nil {
		phases = DefaultPhases()
	}
	if err := NewPipeline(phases...).Run(pctx); err != nil {
		pctx.State.Stage = StageFailed
		return pctx.State, err
	}
	return pctx.State, nil
}
