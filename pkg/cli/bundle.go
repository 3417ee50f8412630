/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deployctl/pkg/bundle"
	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	"github.com/NVIDIA/deployctl/pkg/serializer"
)

func bundleCmd() *cli.Command {
	return &cli.Command{
		Name:                  "bundle",
		EnableShellCompletion: true,
		Usage:                 "Render manifests and publish them as a bundle",
		Description: `Renders the application manifests and publishes them as a bundle,
either into a local directory or to an OCI registry via ORAS. Registry
authentication uses the standard Docker credential store.

# Examples

Write the rendered bundle to a local directory:
  deployctl bundle --env-file ./demo.env --target ./out/manifests

Push the bundle to an OCI registry:
  deployctl bundle --env-file ./demo.env --target oci://ghcr.io/org/demo-manifests:v1.2.3

Push to a local development registry over HTTP:
  deployctl bundle --env-file ./demo.env --target oci://localhost:5000/demo-manifests --plain-http`,
		Flags: []cli.Flag{
			envFileFlag,
			kubeconfigFlag,
			&cli.StringFlag{
				Name:     "target",
				Aliases:  []string{"t"},
				Required: true,
				Usage:    "Output target: a directory path or oci://registry/repo:tag",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Render without contacting a cluster",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the registry connection",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the registry connection",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			cfg, err := config.Load(cmd.String("env-file"))
			if err != nil {
				return err
			}

			var profile *cluster.Profile
			if !cmd.Bool("offline") {
				profile, err = detectProfile(ctx, cmd.String("kubeconfig"))
				if err != nil {
					return err
				}
			}

			res, err := bundle.Publish(ctx, bundle.Options{
				Config:      cfg,
				Profile:     profile,
				Target:      cmd.String("target"),
				Version:     version,
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure-tls"),
			})
			if err != nil {
				return err
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			return ser.Serialize(ctx, res)
		},
	}
}
