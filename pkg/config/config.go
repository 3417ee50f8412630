/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"github.com/joho/godotenv"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

// Target identifies the deployment target environment.
type Target string

const (
	// TargetLocal deploys to a local cluster and skips infrastructure
	// provisioning.
	TargetLocal Target = "local"
	// TargetProd provisions cloud infrastructure before deploying.
	TargetProd Target = "prod"
)

// ConfirmMode pre-declares the intended infrastructure action for
// unattended runs. The pipeline never infers consent.
type ConfirmMode string

const (
	// ConfirmPlanOnly stops the infrastructure step after plan.
	ConfirmPlanOnly ConfirmMode = "plan"
	// ConfirmApply authorizes infrastructure apply without a prompt.
	ConfirmApply ConfirmMode = "apply"
)

// Required configuration keys. Every key must be present and non-empty.
const (
	KeyAppName        = "APP_NAME"
	KeyNamespace      = "NAMESPACE"
	KeyImage          = "IMAGE"
	KeyImageTag       = "IMAGE_TAG"
	KeyAppPort        = "APP_PORT"
	KeyReplicasMin    = "REPLICAS_MIN"
	KeyReplicasMax    = "REPLICAS_MAX"
	KeyTarget         = "TARGET"
	KeyRegistrySecret = "REGISTRY_SECRET"
)

// Optional configuration keys with defaults.
const (
	KeyContainerTool  = "CONTAINER_TOOL"
	KeyIaCTool        = "IAC_TOOL"
	KeyGitOpsTool     = "GITOPS_TOOL"
	KeyScanTool       = "SCAN_TOOL"
	KeyManifestDir    = "MANIFEST_DIR"
	KeyInfraDir       = "INFRA_DIR"
	KeyMonitoringDir  = "MONITORING_DIR"
	KeyPushgatewayURL = "PUSHGATEWAY_URL"
	KeyConfirm        = "CONFIRM"
)

var requiredKeys = []string{
	KeyAppName,
	KeyNamespace,
	KeyImage,
	KeyImageTag,
	KeyAppPort,
	KeyReplicasMin,
	KeyReplicasMax,
	KeyTarget,
	KeyRegistrySecret,
}

// numericKeys must parse as integers and must not be quoted in the
// source file. Quoted numbers are a recurring misconfiguration that
// changes how the substituted manifests are interpreted downstream.
var numericKeys = []string{
	KeyAppPort,
	KeyReplicasMin,
	KeyReplicasMax,
}

// quotedValue matches KEY="..." or KEY='...' assignments in the raw file.
var quotedValue = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*=\s*["'].*["']\s*$`)

// DeploymentConfig is the resolved, typed configuration for one pipeline
// run. It is constructed once by Load and never mutated afterward.
type DeploymentConfig struct {
	AppName        string `json:"appName" yaml:"appName"`
	Namespace      string `json:"namespace" yaml:"namespace"`
	Image          string `json:"image" yaml:"image"`
	ImageTag       string `json:"imageTag" yaml:"imageTag"`
	Port           int    `json:"port" yaml:"port"`
	ReplicasMin    int    `json:"replicasMin" yaml:"replicasMin"`
	ReplicasMax    int    `json:"replicasMax" yaml:"replicasMax"`
	Target         Target `json:"target" yaml:"target"`
	RegistrySecret string `json:"registrySecret" yaml:"registrySecret"`

	ContainerTool  string      `json:"containerTool" yaml:"containerTool"`
	IaCTool        string      `json:"iacTool" yaml:"iacTool"`
	GitOpsTool     string      `json:"gitopsTool" yaml:"gitopsTool"`
	ScanTool       string      `json:"scanTool" yaml:"scanTool"`
	ManifestDir    string      `json:"manifestDir" yaml:"manifestDir"`
	InfraDir       string      `json:"infraDir" yaml:"infraDir"`
	MonitoringDir  string      `json:"monitoringDir" yaml:"monitoringDir"`
	PushgatewayURL string      `json:"pushgatewayUrl,omitempty" yaml:"pushgatewayUrl,omitempty"`
	Confirm        ConfirmMode `json:"confirm,omitempty" yaml:"confirm,omitempty"`

	// raw holds every key/value pair from the source file for
	// placeholder substitution.
	raw map[string]string
}

// ImageRef returns the fully qualified image reference (image:tag).
func (c *DeploymentConfig) ImageRef() string {
	return fmt.Sprintf("%s:%s", c.Image, c.ImageTag)
}

// Values returns the substitution map for manifest rendering: every
// key/value pair from the source file plus derived values. The returned
// map is a copy; mutating it does not affect the config.
func (c *DeploymentConfig) Values() map[string]string {
	out := make(map[string]string, len(c.raw)+1)
	for k, v := range c.raw {
		out[k] = v
	}
	out["IMAGE_REF"] = c.ImageRef()
	return out
}

// Load reads and validates a key=value environment file into a
// DeploymentConfig. It does not mutate the process environment; callers
// receive a value they apply explicitly.
//
// Validation failures return a StructuredError with code CONFIG_INVALID
// naming the offending key. A required field is never silently defaulted.
func Load(path string) (*DeploymentConfig, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to read environment file %q", path), err)
	}

	for _, key := range requiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			return nil, apperrors.Newf(apperrors.ErrCodeConfigInvalid,
				"required key %s is missing or empty in %s", key, path)
		}
	}

	// godotenv strips quote characters, so quoted numerics are detected
	// by re-scanning the raw file.
	quoted, err := scanQuotedKeys(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to scan environment file %q", path), err)
	}

	nums := make(map[string]int, len(numericKeys))
	for _, key := range numericKeys {
		if quoted[key] {
			return nil, apperrors.Newf(apperrors.ErrCodeConfigInvalid,
				"numeric key %s must not be quoted", key)
		}
		n, convErr := strconv.Atoi(values[key])
		if convErr != nil {
			return nil, apperrors.Newf(apperrors.ErrCodeConfigInvalid,
				"key %s must be an integer, got %q", key, values[key])
		}
		nums[key] = n
	}

	cfg := &DeploymentConfig{
		AppName:        values[KeyAppName],
		Namespace:      values[KeyNamespace],
		Image:          values[KeyImage],
		ImageTag:       values[KeyImageTag],
		Port:           nums[KeyAppPort],
		ReplicasMin:    nums[KeyReplicasMin],
		ReplicasMax:    nums[KeyReplicasMax],
		Target:         Target(values[KeyTarget]),
		RegistrySecret: values[KeyRegistrySecret],
		ContainerTool:  valueOr(values, KeyContainerTool, "docker"),
		IaCTool:        valueOr(values, KeyIaCTool, "tofu"),
		GitOpsTool:     valueOr(values, KeyGitOpsTool, "argocd"),
		ScanTool:       valueOr(values, KeyScanTool, "trivy"),
		ManifestDir:    valueOr(values, KeyManifestDir, "manifests"),
		InfraDir:       valueOr(values, KeyInfraDir, "infra"),
		MonitoringDir:  valueOr(values, KeyMonitoringDir, "monitoring"),
		PushgatewayURL: values[KeyPushgatewayURL],
		Confirm:        ConfirmMode(values[KeyConfirm]),
		raw:            values,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DeploymentConfig) validate() error {
	switch c.Target {
	case TargetLocal, TargetProd:
	default:
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"key %s must be %q or %q, got %q", KeyTarget, TargetLocal, TargetProd, c.Target)
	}

	switch c.Confirm {
	case "", ConfirmPlanOnly, ConfirmApply:
	default:
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"key %s must be %q or %q, got %q", KeyConfirm, ConfirmPlanOnly, ConfirmApply, c.Confirm)
	}

	if c.Port < 1 || c.Port > 65535 {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"key %s must be a valid port (1-65535), got %d", KeyAppPort, c.Port)
	}

	if c.ReplicasMin < 1 {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"key %s must be at least 1, got %d", KeyReplicasMin, c.ReplicasMin)
	}
	if c.ReplicasMax < c.ReplicasMin {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"key %s (%d) must be >= %s (%d)",
			KeyReplicasMax, c.ReplicasMax, KeyReplicasMin, c.ReplicasMin)
	}

	if _, err := reference.ParseNormalizedNamed(c.ImageRef()); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid image reference %q", c.ImageRef()), err)
	}

	return nil
}

// scanQuotedKeys returns the set of keys whose values are wrapped in
// quote characters in the raw file.
func scanQuotedKeys(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	quoted := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if m := quotedValue.FindStringSubmatch(line); m != nil {
			quoted[m[1]] = true
		}
	}
	return quoted, scanner.Err()
}

func valueOr(values map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(values[key]); v != "" {
		return v
	}
	return fallback
}
