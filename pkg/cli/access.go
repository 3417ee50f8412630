/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deployctl/pkg/access"
	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/serializer"
)

func accessCmd() *cli.Command {
	return &cli.Command{
		Name:                  "access",
		EnableShellCompletion: true,
		Usage:                 "Report how to reach the deployed application",
		Description: `Resolves the access point of the deployed application from the live
cluster: a node URL for NodePort exposure, the external endpoint for
LoadBalancer exposure (bounded wait), or a port-forward instruction
when neither applies.`,
		Flags: []cli.Flag{
			envFileFlag,
			kubeconfigFlag,
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

			clientset, _, err := client.GetWithKubeconfig(cmd.String("kubeconfig"))
			if err != nil {
				return err
			}

			profile, err := cluster.Detect(ctx, clientset)
			if err != nil {
				return err
			}

			info, err := access.NewReporter(clientset).Resolve(ctx, profile, cfg.Namespace, cfg.AppName)
			if err != nil {
				return err
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			return ser.Serialize(ctx, info)
		},
	}
}
