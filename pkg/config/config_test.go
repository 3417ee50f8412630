/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

const validEnv = `APP_NAME=demo-app
NAMESPACE=demo
IMAGE=ghcr.io/nvidia/demo-app
IMAGE_TAG=v1.2.3
APP_PORT=3000
REPLICAS_MIN=2
REPLICAS_MAX=5
TARGET=local
REGISTRY_SECRET=regcred
`

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeEnvFile(t, validEnv))
	require.NoError(t, err)

	assert.Equal(t, "demo-app", cfg.AppName)
	assert.Equal(t, "demo", cfg.Namespace)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 2, cfg.ReplicasMin)
	assert.Equal(t, 5, cfg.ReplicasMax)
	assert.Equal(t, TargetLocal, cfg.Target)
	assert.Equal(t, "ghcr.io/nvidia/demo-app:v1.2.3", cfg.ImageRef())

	// defaults for optional tools
	assert.Equal(t, "docker", cfg.ContainerTool)
	assert.Equal(t, "tofu", cfg.IaCTool)
	assert.Equal(t, "argocd", cfg.GitOpsTool)
	assert.Equal(t, "trivy", cfg.ScanTool)
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	for _, key := range requiredKeys {
		t.Run(key, func(t *testing.T) {
			var lines []string
			for _, line := range strings.Split(strings.TrimSpace(validEnv), "\n") {
				if !strings.HasPrefix(line, key+"=") {
					lines = append(lines, line)
				}
			}
			_, err := Load(writeEnvFile(t, strings.Join(lines, "\n")+"\n"))
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_QuotedNumericRejected(t *testing.T) {
	content := strings.Replace(validEnv, "APP_PORT=3000", `APP_PORT="3000"`, 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "quoted")
}

func TestLoad_NonIntegerNumeric(t *testing.T) {
	content := strings.Replace(validEnv, "REPLICAS_MIN=2", "REPLICAS_MIN=two", 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "REPLICAS_MIN")
}

func TestLoad_InvalidTarget(t *testing.T) {
	content := strings.Replace(validEnv, "TARGET=local", "TARGET=staging", 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "TARGET")
}

func TestLoad_ReplicaBoundsOrdering(t *testing.T) {
	content := strings.Replace(validEnv, "REPLICAS_MAX=5", "REPLICAS_MAX=1", 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPLICAS_MAX")
}

func TestLoad_InvalidImageReference(t *testing.T) {
	content := strings.Replace(validEnv, "IMAGE_TAG=v1.2.3", "IMAGE_TAG=Not A Tag", 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestLoad_InvalidPortRange(t *testing.T) {
	content := strings.Replace(validEnv, "APP_PORT=3000", "APP_PORT=70000", 1)
	_, err := Load(writeEnvFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestValues_IncludesDerivedImageRef(t *testing.T) {
	cfg, err := Load(writeEnvFile(t, validEnv))
	require.NoError(t, err)

	values := cfg.Values()
	assert.Equal(t, "ghcr.io/nvidia/demo-app:v1.2.3", values["IMAGE_REF"])
	assert.Equal(t, "3000", values["APP_PORT"])

	// returned map is a copy
	values["APP_NAME"] = "mutated"
	assert.Equal(t, "demo-app", cfg.Values()["APP_NAME"])
}

func TestLoad_DoesNotMutateProcessEnvironment(t *testing.T) {
	t.Setenv("APP_NAME", "")
	_, err := Load(writeEnvFile(t, validEnv))
	require.NoError(t, err)
	assert.Empty(t, os.Getenv("APP_NAME"))
}
