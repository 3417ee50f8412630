/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"fmt"

	"github.com/NVIDIA/deployctl/pkg/config"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// planFile is the saved plan the apply consumes, so what the operator
// approved is exactly what gets applied.
const planFile = "deployctl.tfplan"

// Infrastructure provisions cloud resources with the configured IaC tool
// (tofu or terraform). It only runs for the prod target; local clusters
// need no provisioning. The apply is confirmation-gated because it
// creates billable resources, and it consumes the saved plan.
func Infrastructure() pipeline.Step {
	return pipeline.Step{
		Name:    "infrastructure",
		Reaches: pipeline.StateInfrastructureReady,
		Condition: func(env *pipeline.Env) bool {
			return env.Config.Target == config.TargetProd
		},
		Run: func(ctx context.Context, env *pipeline.Env) error {
			tool := env.Config.IaCTool
			dir := env.Config.InfraDir

			if _, err := env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"init", "-input=false"},
				Dir:  dir,
			}); err != nil {
				return err
			}

			if _, err := env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"plan", "-input=false", "-out=" + planFile},
				Dir:  dir,
			}); err != nil {
				return err
			}

			if env.PlanOnly {
				return apperrors.New(apperrors.ErrCodeConfirmationDeclined,
					"plan-only mode, stopping before infrastructure apply")
			}

			ok, err := env.Confirmer.Confirm(fmt.Sprintf(
				"Apply infrastructure changes in %q with %s (may create billable cloud resources)?",
				dir, tool))
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.New(apperrors.ErrCodeConfirmationDeclined,
					"infrastructure apply declined")
			}

			_, err = env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"apply", "-input=false", planFile},
				Dir:  dir,
			})
			return err
		},
	}
}
