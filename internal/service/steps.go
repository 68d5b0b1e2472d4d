package service

import (
	"go-pos-ws/internal/metrics"

	"github.com/rs/zerolog/log"
)

type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepOutcome is the recorded result of one write in a multi-step flow.
// Earlier steps are never rolled back when a later one fails.
type StepOutcome struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Steps collects outcomes of a flow in execution order.
type Steps struct {
	flow     string
	Outcomes []StepOutcome
}

func newSteps(flow string) *Steps {
	return &Steps{flow: flow}
}

func (s *Steps) record(step string, err error) {
	if err == nil {
		s.Outcomes = append(s.Outcomes, StepOutcome{Step: step, Status: StepOK})
		return
	}
	metrics.OrchestrationStepFailures.WithLabelValues(s.flow, step).Inc()
	log.Warn().Err(err).Str("flow", s.flow).Str("step", step).Msg("step failed, earlier steps kept")
	s.Outcomes = append(s.Outcomes, StepOutcome{Step: step, Status: StepFailed, Error: err.Error()})
}

func (s *Steps) skip(step string) {
	s.Outcomes = append(s.Outcomes, StepOutcome{Step: step, Status: StepSkipped})
}

// Warnings lists the error message of every failed step.
func (s *Steps) Warnings() []string {
	var out []string
	for _, o := range s.Outcomes {
		if o.Status == StepFailed {
			out = append(out, o.Step+": "+o.Error)
		}
	}
	return out
}

// Partial reports whether any step failed.
func (s *Steps) Partial() bool {
	return len(s.Warnings()) > 0
}
