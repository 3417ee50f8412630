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

	"github.com/NVIDIA/deployctl/pkg/access"
	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	"github.com/NVIDIA/deployctl/pkg/defaults"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/pipeline/steps"
	"github.com/NVIDIA/deployctl/pkg/runner"
	"github.com/NVIDIA/deployctl/pkg/serializer"
	semver "github.com/NVIDIA/deployctl/pkg/version"
)

// minKubernetesVersion is the oldest cluster release the deployment
// sequence is tested against. Older clusters get a warning, not a hard
// failure.
var minKubernetesVersion = semver.MustParse("1.23")

// deployOutput is the serialized result of a deploy run: the pipeline
// report plus, on success, how to reach the application.
type deployOutput struct {
	Report *pipeline.Report `json:"report" yaml:"report"`
	Access *access.Info     `json:"access,omitempty" yaml:"access,omitempty"`
}

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:                  "deploy",
		EnableShellCompletion: true,
		Usage:                 "Run the full deployment sequence against the active cluster",
		Description: `Runs the complete deployment sequence:

  1. infrastructure - provision cloud resources (prod target only, confirmation-gated)
  2. image          - build and push the application container image
  3. image-scan     - scan the image for known vulnerabilities (report-only)
  4. manifests      - render manifests and apply them to the cluster
  5. observability  - apply monitoring manifests (when present)
  6. gitops-sync    - trigger GitOps sync and wait for healthy

Configuration comes from a key=value environment file (--env-file).
The active cluster distribution is detected from node metadata and
drives service exposure (NodePort, LoadBalancer, or port-forward).

# Examples

Deploy with an interactive confirmation prompt:
  deployctl deploy --env-file ./demo.env

Unattended deploy honoring CONFIRM=apply from the environment file:
  deployctl deploy --env-file ./demo.env --unattended

Stop after the infrastructure plan without applying:
  deployctl deploy --env-file ./demo.env --plan-only

Write the run report to a ConfigMap:
  deployctl deploy --env-file ./demo.env --output cm://demo/deploy-report`,
		Flags: []cli.Flag{
			envFileFlag,
			kubeconfigFlag,
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Approve all confirmation gates without prompting",
			},
			&cli.BoolFlag{
				Name:  "unattended",
				Usage: "Never prompt; resolve confirmations from CONFIRM in the environment file",
			},
			&cli.BoolFlag{
				Name:  "plan-only",
				Usage: "Stop after the infrastructure plan without applying anything",
			},
			&cli.BoolFlag{
				Name:  "skip-scan",
				Usage: "Skip the image vulnerability scan step",
			},
			&cli.BoolFlag{
				Name:  "skip-observability",
				Usage: "Skip the observability step",
			},
			&cli.BoolFlag{
				Name:  "skip-gitops",
				Usage: "Skip the GitOps sync step",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not stream tool output; captured output still appears in errors",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.DeployTimeout,
				Usage: "Overall deployment timeout",
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

			clientset, _, err := client.GetWithKubeconfig(cmd.String("kubeconfig"))
			if err != nil {
				return err
			}

			profile, err := cluster.Detect(ctx, clientset)
			if err != nil {
				return err
			}
			slog.Info("cluster detected",
				"profile", profile.String(),
				"kubernetes", profile.KubernetesVersion.String())

			if profile.KubernetesVersion.IsValid() &&
				!profile.KubernetesVersion.AtLeast(minKubernetesVersion) {
				slog.Warn("cluster is older than the oldest tested release, proceeding anyway",
					"cluster", profile.KubernetesVersion.String(),
					"oldestTested", minKubernetesVersion.String())
			}

			env := &pipeline.Env{
				Config:            cfg,
				Profile:           profile,
				Invoker:           resolveInvoker(cmd),
				Clientset:         clientset,
				Confirmer:         resolveConfirmer(cmd, cfg),
				PlanOnly:          cmd.Bool("plan-only"),
				SkipScan:          cmd.Bool("skip-scan"),
				SkipObservability: cmd.Bool("skip-observability"),
				SkipGitOps:        cmd.Bool("skip-gitops"),
			}

			runCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			report, runErr := pipeline.New(steps.DeploySequence()...).Run(runCtx, env)

			out := &deployOutput{Report: report}
			if runErr == nil {
				info, accessErr := access.NewReporter(clientset).Resolve(
					runCtx, profile, cfg.Namespace, cfg.AppName)
				if accessErr != nil {
					slog.Warn("failed to resolve access info", "error", accessErr)
				} else {
					out.Access = info
					if info.URL != "" {
						fmt.Fprintf(os.Stderr, "Application available at %s\n", info.URL)
					} else {
						fmt.Fprintln(os.Stderr, info.Instruction)
					}
				}
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			if err := ser.Serialize(ctx, out); err != nil {
				slog.Error("failed to write deployment report", "error", err)
				if runErr == nil {
					return err
				}
			}

			return runErr
		},
	}
}

// resolveInvoker picks the command runner: --quiet captures tool output
// without streaming it to the terminal.
func resolveInvoker(cmd *cli.Command) runner.Invoker {
	if cmd.Bool("quiet") {
		return runner.NewQuiet()
	}
	return runner.New()
}

// resolveConfirmer picks the confirmation strategy once, at startup.
// --yes approves everything; --unattended defers to the pre-declared
// CONFIRM intent; the default prompts on the terminal.
func resolveConfirmer(cmd *cli.Command, cfg *config.DeploymentConfig) pipeline.Confirmer {
	switch {
	case cmd.Bool("yes"):
		return &pipeline.Unattended{Mode: config.ConfirmApply}
	case cmd.Bool("unattended"):
		return &pipeline.Unattended{Mode: cfg.Confirm}
	default:
		return &pipeline.Interactive{In: os.Stdin, Out: os.Stderr}
	}
}
