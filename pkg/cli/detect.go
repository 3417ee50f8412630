/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/serializer"
)

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "detect",
		EnableShellCompletion: true,
		Usage:                 "Detect the active cluster distribution and exposure strategy",
		Description: `Classifies the active Kubernetes cluster from node metadata (labels,
annotations, provider IDs) and reports the derived deployment profile:
distribution, service exposure mode, and ingress class.

Detection is read-only and conservative: an unrecognized cluster is
reported as unknown with the port-forward exposure fallback, never
guessed.

The profile can be output in JSON, YAML, or table format.`,
		Flags: []cli.Flag{
			kubeconfigFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			clientset, _, err := client.GetWithKubeconfig(cmd.String("kubeconfig"))
			if err != nil {
				return err
			}

			profile, err := cluster.Detect(ctx, clientset)
			if err != nil {
				return err
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			return ser.Serialize(ctx, profile)
		},
	}
}
