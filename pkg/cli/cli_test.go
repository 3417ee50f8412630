/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/deployctl/pkg/config"
	"github.com/NVIDIA/deployctl/pkg/pipeline"
	"github.com/NVIDIA/deployctl/pkg/runner"
)

func TestRootCmd_Commands(t *testing.T) {
	root := rootCmd()

	want := []string{"deploy", "detect", "render", "access", "bundle", "version"}
	got := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
}

func TestDeployCmd_Flags(t *testing.T) {
	cmd := deployCmd()

	names := map[string]bool{}
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}

	for _, n := range []string{"env-file", "kubeconfig", "yes", "unattended",
		"plan-only", "skip-scan", "skip-observability", "skip-gitops",
		"quiet", "timeout", "output", "format"} {
		assert.True(t, names[n], "missing flag %q", n)
	}
}

func TestVersionCmd_WritesBuildInfo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "version.json")

	err := rootCmd().Run(context.Background(),
		[]string{name, "version", "--format", "json", "--output", out})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var info buildInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, name, info.Name)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Go)
}

func TestVersionCmd_RejectsUnknownFormat(t *testing.T) {
	err := rootCmd().Run(context.Background(),
		[]string{name, "version", "--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestResolveConfirmer(t *testing.T) {
	cfg := &config.DeploymentConfig{Confirm: config.ConfirmApply}

	flagCmd := func(args ...string) *cli.Command {
		cmd := deployCmd()
		// parse flags without running the action
		cmd.Action = func(context.Context, *cli.Command) error { return nil }
		require.NoError(t, cmd.Run(context.Background(), append([]string{"deploy"}, args...)))
		return cmd
	}

	yes := resolveConfirmer(flagCmd("--yes"), cfg)
	if un, ok := yes.(*pipeline.Unattended); assert.True(t, ok) {
		assert.Equal(t, config.ConfirmApply, un.Mode)
	}

	unattended := resolveConfirmer(flagCmd("--unattended"), cfg)
	if un, ok := unattended.(*pipeline.Unattended); assert.True(t, ok) {
		assert.Equal(t, config.ConfirmApply, un.Mode)
	}

	interactive := resolveConfirmer(flagCmd(), cfg)
	_, ok := interactive.(*pipeline.Interactive)
	assert.True(t, ok)
}

func TestResolveInvoker(t *testing.T) {
	flagCmd := func(args ...string) *cli.Command {
		cmd := deployCmd()
		cmd.Action = func(context.Context, *cli.Command) error { return nil }
		require.NoError(t, cmd.Run(context.Background(), append([]string{"deploy"}, args...)))
		return cmd
	}

	quiet, ok := resolveInvoker(flagCmd("--quiet")).(*runner.Runner)
	require.True(t, ok)
	assert.Nil(t, quiet.Echo)

	loud, ok := resolveInvoker(flagCmd()).(*runner.Runner)
	require.True(t, ok)
	assert.NotNil(t, loud.Echo)
}
