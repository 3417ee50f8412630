/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"

	"github.com/NVIDIA/deployctl/pkg/defaults"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// GitOpsSync triggers a sync of the GitOps application and waits for it
// to report healthy. The sync itself is a mutating call and runs exactly
// once; only the read-only health wait is retried.
func GitOpsSync() pipeline.Step {
	return pipeline.Step{
		Name:    "gitops-sync",
		Reaches: pipeline.StateSynced,
		Condition: func(env *pipeline.Env) bool {
			return !env.SkipGitOps
		},
		Run: func(ctx context.Context, env *pipeline.Env) error {
			tool := env.Config.GitOpsTool
			app := env.Config.AppName

			if _, err := env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"app", "sync", app},
			}); err != nil {
				return err
			}

			_, err := runner.RunIdempotent(ctx, env.Invoker, runner.Spec{
				Name: tool,
				Args: []string{"app", "wait", app, "--health", "--timeout", "30"},
			}, runner.PollSpec{
				Interval: defaults.GitOpsSyncPollInterval,
				Timeout:  defaults.GitOpsSyncTimeout,
			})
			return err
		},
	}
}
