/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/render"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:                  "render",
		EnableShellCompletion: true,
		Usage:                 "Render manifests with substituted values without applying them",
		Description: `Renders every manifest in the configured manifest directory, substituting
${NAME} placeholders from the environment file, and prints the combined
multi-document YAML. Nothing is applied to the cluster.

Cluster-derived values (SERVICE_TYPE, INGRESS_CLASS) come from detection
when a cluster is reachable; pass --offline to render with file-provided
values only.

An unresolved placeholder fails the render and lists every missing name.`,
		Flags: []cli.Flag{
			envFileFlag,
			kubeconfigFlag,
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Render without contacting a cluster",
			},
			outputFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("env-file"))
			if err != nil {
				return err
			}

			values := cfg.Values()
			if !cmd.Bool("offline") {
				profile, err := detectProfile(ctx, cmd.String("kubeconfig"))
				if err != nil {
					return err
				}
				values["SERVICE_TYPE"] = serviceTypeFor(profile)
				values["INGRESS_CLASS"] = profile.IngressClass
			}

			docs, err := render.Dir(cfg.ManifestDir, values)
			if err != nil {
				return err
			}

			out := os.Stdout
			if path := cmd.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						slog.Warn("failed to close output file", "error", err)
					}
				}()
				out = f
			}

			_, err = fmt.Fprintln(out, render.Combined(docs))
			return err
		},
	}
}

func detectProfile(ctx context.Context, kubeconfig string) (*cluster.Profile, error) {
	clientset, _, err := client.GetWithKubeconfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return cluster.Detect(ctx, clientset)
}

func serviceTypeFor(profile *cluster.Profile) string {
	switch profile.Exposure {
	case cluster.ExposureNodePort:
		return "NodePort"
	case cluster.ExposureLoadBalancer:
		return "LoadBalancer"
	default:
		return "ClusterIP"
	}
}
