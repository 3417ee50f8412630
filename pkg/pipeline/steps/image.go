/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"

	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// Image builds the application container image and pushes it to the
// registry with the configured container tool. Build and push are
// mutating operations and run exactly once; a failed push is fatal
// rather than retried, since registries may have partially accepted
// layers.
func Image() pipeline.Step {
	return pipeline.Step{
		Name:    "image",
		Reaches: pipeline.StateImageReady,
		Run: func(ctx context.Context, env *pipeline.Env) error {
			tool := env.Config.ContainerTool
			ref := env.Config.ImageRef()

			if _, err := env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"build", "-t", ref, "."},
			}); err != nil {
				return err
			}

			_, err := env.Invoker.Run(ctx, runner.Spec{
				Name: tool,
				Args: []string{"push", ref},
			})
			return err
		},
	}
}
