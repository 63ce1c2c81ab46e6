package plugin

import (
	"fmt"

	"github.com/sabberworm/wok/internal/pipe"
)

// Pipes is the set of pipe primitives a stage is bound to. The broker
// implements it.
type Pipes interface {
	Provide(name string, provider pipe.Provider, replace bool) error
	Subscribe(name string, subscriber pipe.Subscriber)
	Render(name string, values ...any)
	Request(name string, options ...any) (any, error)
}

// Stage is a plugin instance's handle on its pipes. Request pulls from the
// input pipe and Render pushes to the output pipe.
type Stage struct {
	pipes  Pipes
	input  string
	output string
}

// NewStage binds a stage to the given pipes. Empty names mean the stage has
// no pipe on that side.
func NewStage(pipes Pipes, input, output string) *Stage {
	return &Stage{pipes: pipes, input: input, output: output}
}

// Pipes returns the broker the stage belongs to.
func (s *Stage) Pipes() Pipes { return s.pipes }

// InputName returns the input pipe name, or "" if there is none.
func (s *Stage) InputName() string { return s.input }

// OutputName returns the output pipe name, or "" if there is none.
func (s *Stage) OutputName() string { return s.output }

// HasInput reports whether the stage is bound to an input pipe.
func (s *Stage) HasInput() bool { return s.input != "" }

// HasOutput reports whether the stage is bound to an output pipe.
func (s *Stage) HasOutput() bool { return s.output != "" }

// Request asks the provider of the input pipe for data.
func (s *Stage) Request(options ...any) (any, error) {
	if !s.HasInput() {
		return nil, fmt.Errorf("cannot request without an input pipe: %w", ErrStageUnbound)
	}
	return s.pipes.Request(s.input, options...)
}

// Render pushes values to every subscriber of the output pipe.
func (s *Stage) Render(values ...any) error {
	if !s.HasOutput() {
		return fmt.Errorf("cannot render without an output pipe: %w", ErrStageUnbound)
	}
	s.pipes.Render(s.output, values...)
	return nil
}
