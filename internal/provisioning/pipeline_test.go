package provisioning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseFunc creates a Phase from a function for testing.
type phaseFuncImpl struct {
	name string
	fn   func(*Context) error
}

func phaseFunc(name string, fn func(*Context) error) Phase {
	return &phaseFuncImpl{name: name, fn: fn}
}

func (p *phaseFuncImpl) Name() string                 { return p.name }
func (p *phaseFuncImpl) Provision(ctx *Context) error { return p.fn(ctx) }

func TestNewPipeline(t *testing.T) {
	t.Parallel()
	pipeline := NewPipeline(ConnectPhase{}, DistroPhase{})

	require.NotNil(t, pipeline)
	require.Len(t, pipeline.Phases, 2)
	assert.Equal(t, "connect", pipeline.Phases[0].Name())
	assert.Equal(t, "distro", pipeline.Phases[1].Name())
}

func TestNewPipeline_Empty(t *testing.T) {
	t.Parallel()
	pipeline := NewPipeline()

	require.NotNil(t, pipeline)
	assert.Empty(t, pipeline.Phases)
	assert.NoError(t, pipeline.Run(&Context{Observer: NewMockObserver()}))
}

func TestPipeline_Run_Success(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)
	record := func(name string) Phase {
		return phaseFunc(name, func(_ *Context) error { executed = append(executed, name); return nil })
	}

	pipeline := NewPipeline(record("connect"), record("distro"), record("service"))
	err := pipeline.Run(&Context{Observer: NewMockObserver()})

	require.NoError(t, err)
	assert.Equal(t, []string{"connect", "distro", "service"}, executed)
}

func TestPipeline_Run_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)
	observer := NewMockObserver()

	pipeline := NewPipeline(
		phaseFunc("connect", func(_ *Context) error { executed = append(executed, "connect"); return nil }),
		phaseFunc("dependencies", func(_ *Context) error { return fmt.Errorf("no package manager") }),
		phaseFunc("service", func(_ *Context) error { executed = append(executed, "service"); return nil }),
	)

	err := pipeline.Run(&Context{Observer: observer})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependencies phase failed")
	assert.Contains(t, err.Error(), "no package manager")
	assert.Equal(t, []string{"connect"}, executed)

	assert.Len(t, observer.eventsOfType(EventPhaseStarted), 2)
	assert.Len(t, observer.eventsOfType(EventPhaseCompleted), 1)
	failed := observer.eventsOfType(EventPhaseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "dependencies (2/3)", failed[0].Phase)
}

func TestPipeline_Run_WrapsError(t *testing.T) {
	t.Parallel()
	sentinel := fmt.Errorf("boom")

	err := NewPipeline(phaseFunc("failing", func(_ *Context) error { return sentinel })).
		Run(&Context{Observer: NewMockObserver()})

	assert.ErrorIs(t, err, sentinel)
}
