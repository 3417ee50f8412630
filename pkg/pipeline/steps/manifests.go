/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"strings"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/defaults"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/render"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

// Manifests renders every manifest in the configured directory,
// substitutes all placeholders, applies the combined stream to the
// cluster, and waits for the application Deployment to roll out.
//
// Rendering happens entirely in memory before the first apply: if any
// file has an unresolved placeholder, nothing reaches the cluster.
func Manifests() pipeline.Step {
	return pipeline.Step{
		Name:    "manifests",
		Reaches: pipeline.StateManifestsApplied,
		Run: func(ctx context.Context, env *pipeline.Env) error {
			docs, err := render.Dir(env.Config.ManifestDir, renderValues(env))
			if err != nil {
				return err
			}

			if _, err := env.Invoker.Run(ctx, runner.Spec{
				Name:  "kubectl",
				Args:  []string{"apply", "-n", env.Config.Namespace, "-f", "-"},
				Stdin: strings.NewReader(render.Combined(docs)),
			}); err != nil {
				return err
			}

			return waitForRollout(ctx, env.Clientset,
				env.Config.Namespace, env.Config.AppName, defaults.RolloutTimeout)
		},
	}
}

// renderValues is the substitution map for manifest rendering: every
// pair from the env file plus values derived from the detected cluster
// profile. Derived keys win over file-provided ones so manifests always
// match the live cluster.
func renderValues(env *pipeline.Env) map[string]string {
	values := env.Config.Values()
	values["SERVICE_TYPE"] = serviceType(env.Profile.Exposure)
	values["INGRESS_CLASS"] = env.Profile.IngressClass
	return values
}

func serviceType(mode cluster.ExposureMode) string {
	switch mode {
	case cluster.ExposureNodePort:
		return "NodePort"
	case cluster.ExposureLoadBalancer:
		return "LoadBalancer"
	default:
		return "ClusterIP"
	}
}
