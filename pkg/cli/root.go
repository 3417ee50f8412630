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
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/logging"
	"github.com/NVIDIA/deployctl/pkg/serializer"
)

const (
	name           = "deployctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Shared flags across commands.
var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output path (file, cm://namespace/name, or stdout if empty)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Value: string(serializer.FormatYAML),
		Usage: fmt.Sprintf("Output format (supported values: %s)", serializer.SupportedFormats()),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:  "kubeconfig",
		Usage: "Path to the kubeconfig file (defaults to KUBECONFIG, then ~/.kube/config, then in-cluster)",
	}

	envFileFlag = &cli.StringFlag{
		Name:    "env-file",
		Aliases: []string{"f"},
		Value:   ".env",
		Usage:   "Path to the deployment environment file",
	}
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "One-command demo application deployment",
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`deployctl - one-command Kubernetes demo deployment

Version: %s
Commit:  %s
Built:   %s

Loads a declarative environment file, detects the active cluster
distribution, and drives the full deployment sequence: infrastructure,
image build and push, manifest rendering and apply, observability, and
GitOps sync.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			deployCmd(),
			detectCmd(),
			renderCmd(),
			accessCmd(),
			bundleCmd(),
			versionCmd(),
		},
	}
}

// Run executes the CLI. It is called by main.main and returns the
// process exit code: 0 for success and graceful declines, 1 for fatal
// errors.
func Run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeConfirmationDeclined) {
			slog.Info("run stopped", "reason", err.Error())
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// closeSerializer closes the serializer if it holds resources.
func closeSerializer(s serializer.Serializer) {
	if closer, ok := s.(serializer.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}
}
