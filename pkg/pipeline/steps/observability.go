/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"os"
	"strings"

	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/render"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// Observability applies the monitoring manifests (dashboards, scrape
// configs, alert rules) with the same render-then-apply path as the
// application manifests. The step is optional twice over: operators can
// skip it explicitly, and a missing monitoring directory skips it
// silently.
func Observability() pipeline.Step {
	return pipeline.Step{
		Name:    "observability",
		Reaches: pipeline.StateObservabilityReady,
		Condition: func(env *pipeline.Env) bool {
			if env.SkipObservability {
				return false
			}
			info, err := os.Stat(env.Config.MonitoringDir)
			return err == nil && info.IsDir()
		},
		Run: func(ctx context.Context, env *pipeline.Env) error {
			docs, err := render.Dir(env.Config.MonitoringDir, renderValues(env))
			if err != nil {
				return err
			}

			_, err = env.Invoker.Run(ctx, runner.Spec{
				Name:  "kubectl",
				Args:  []string{"apply", "-n", env.Config.Namespace, "-f", "-"},
				Stdin: strings.NewReader(render.Combined(docs)),
			})
			return err
		},
	}
}
