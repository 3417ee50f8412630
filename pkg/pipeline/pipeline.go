/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// State is a position in the deployment state machine. Transitions occur
// strictly in declaration order; Failed is terminal and reachable from
// any non-terminal state.
type State string

const (
	StateIdle                State = "Idle"
	StateInfrastructureReady State = "InfrastructureReady"
	StateImageReady          State = "ImageReady"
	StateManifestsApplied    State = "ManifestsApplied"
	StateObservabilityReady  State = "ObservabilityReady"
	StateSynced              State = "Synced"
	StateComplete            State = "Complete"
	StateFailed              State = "Failed"
)

// Env carries the immutable inputs and shared collaborators for one
// pipeline run. Components receive it explicitly; nothing flows through
// ambient process state.
type Env struct {
	Config    *config.DeploymentConfig
	Profile   *cluster.Profile
	Invoker   runner.Invoker
	Clientset client.Interface
	Confirmer Confirmer

	// PlanOnly stops the infrastructure step after plan.
	PlanOnly bool
	// SkipScan, SkipObservability, and SkipGitOps drop the respective
	// steps.
	SkipScan          bool
	SkipObservability bool
	SkipGitOps        bool

	// Vulnerabilities is filled by the image-scan step and copied into
	// the run report.
	Vulnerabilities *VulnerabilitySummary
}

// VulnerabilitySummary aggregates one image scan by severity.
type VulnerabilitySummary struct {
	// Image is the scanned image reference.
	Image string `json:"image" yaml:"image"`
	// Severities maps severity name (CRITICAL, HIGH, ...) to finding count.
	Severities map[string]int `json:"severities" yaml:"severities"`
	// Total is the finding count across all severities.
	Total int `json:"total" yaml:"total"`
}

// Step is a named unit of work with a precondition, an action, and the
// state it advances the pipeline to on success.
type Step struct {
	// Name identifies the step in logs, reports, and metrics.
	Name string
	// Reaches is the state recorded after the step succeeds.
	Reaches State
	// Condition gates execution; nil means always run. A false condition
	// skips the step without failing the run.
	Condition func(env *Env) bool
	// Run performs the step's action.
	Run func(ctx context.Context, env *Env) error
}

// StepStatus is the recorded outcome of one step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
	StepDeclined  StepStatus = "declined"
)

// StepRecord is one step's entry in the run report.
type StepRecord struct {
	Name     string              `json:"name" yaml:"name"`
	Status   StepStatus          `json:"status" yaml:"status"`
	Duration time.Duration       `json:"duration" yaml:"duration"`
	Code     apperrors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report summarizes a pipeline run for the operator and the stored
// deployment record.
type Report struct {
	RunID          string        `json:"runId" yaml:"runId"`
	Target         config.Target `json:"target" yaml:"target"`
	Distribution   string        `json:"distribution" yaml:"distribution"`
	State          State         `json:"state" yaml:"state"`
	LastSuccessful State         `json:"lastSuccessful" yaml:"lastSuccessful"`
	StartedAt      time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Steps          []StepRecord  `json:"steps" yaml:"steps"`

	// Vulnerabilities holds the image-scan outcome when the scan ran.
	Vulnerabilities *VulnerabilitySummary `json:"vulnerabilities,omitempty" yaml:"vulnerabilities,omitempty"`
}

// Pipeline executes an ordered, linear sequence of steps. Steps never run
// concurrently: each has a strict ordering dependency on its
// predecessors (the image must exist before manifests reference it).
type Pipeline struct {
	steps []Step
}

// New creates a Pipeline from the given steps, executed in order.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes the pipeline. On a fatal step failure it halts
// immediately, marks the report Failed with the last successful state
// recorded, and returns the step's error; it never attempts automatic
// rollback of already-applied infrastructure or manifests.
//
// A declined confirmation gate also halts the run, but is a graceful
// early exit (CONFIRMATION_DECLINED), not a failure.
func (p *Pipeline) Run(ctx context.Context, env *Env) (*Report, error) {
	report := &Report{
		RunID:          uuid.NewString(),
		Target:         env.Config.Target,
		Distribution:   string(env.Profile.Distribution),
		State:          StateIdle,
		LastSuccessful: StateIdle,
		StartedAt:      time.Now().UTC(),
		Steps:          make([]StepRecord, 0, len(p.steps)),
	}

	slog.Info("pipeline starting",
		"runId", report.RunID,
		"target", report.Target,
		"distribution", report.Distribution,
		"steps", len(p.steps))

	var runErr error
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			runErr = apperrors.WrapWithContext(apperrors.ErrCodeStepFailed,
				fmt.Sprintf("interrupted before step %q", step.Name), err,
				map[string]any{"state": report.State})
			break
		}

		if step.Condition != nil && !step.Condition(env) {
			slog.Info("step skipped", "step", step.Name, "runId", report.RunID)
			report.Steps = append(report.Steps, StepRecord{Name: step.Name, Status: StepSkipped})
			continue
		}

		slog.Info("step starting", "step", step.Name, "runId", report.RunID)
		start := time.Now()
		err := step.Run(ctx, env)
		elapsed := time.Since(start)
		observeStep(step.Name, elapsed, err)

		record := StepRecord{Name: step.Name, Duration: elapsed}
		switch {
		case err == nil:
			record.Status = StepSucceeded
			report.State = step.Reaches
			report.LastSuccessful = step.Reaches
			slog.Info("step completed",
				"step", step.Name,
				"state", report.State,
				"duration_ms", elapsed.Milliseconds())

		case apperrors.IsCode(err, apperrors.ErrCodeConfirmationDeclined):
			record.Status = StepDeclined
			record.Code = apperrors.CodeOf(err)
			record.Error = err.Error()
			runErr = err
			slog.Info("step declined, stopping", "step", step.Name, "state", report.State)

		default:
			record.Status = StepFailed
			record.Code = apperrors.CodeOf(err)
			record.Error = err.Error()
			runErr = apperrors.WrapWithContext(apperrors.ErrCodeStepFailed,
				fmt.Sprintf("step %q failed", step.Name), err,
				map[string]any{"lastSuccessful": report.LastSuccessful})
			slog.Error("step failed",
				"step", step.Name,
				"lastSuccessful", report.LastSuccessful,
				"error", err)
		}
		report.Steps = append(report.Steps, record)

		if runErr != nil {
			break
		}
	}

	report.Duration = time.Since(report.StartedAt)
	report.Vulnerabilities = env.Vulnerabilities

	switch {
	case runErr == nil:
		report.State = StateComplete
		observeRun("complete", report.Duration)
		slog.Info("pipeline complete",
			"runId", report.RunID,
			"duration_ms", report.Duration.Milliseconds())
	case apperrors.IsCode(runErr, apperrors.ErrCodeConfirmationDeclined):
		observeRun("declined", report.Duration)
	default:
		report.State = StateFailed
		observeRun("failed", report.Duration)
	}

	if url := env.Config.PushgatewayURL; url != "" {
		if err := pushMetrics(url, report.RunID); err != nil {
			// metrics delivery never fails the run
			slog.Warn("failed to push run metrics", "url", url, "error", err)
		}
	}

	return report, runErr
}
