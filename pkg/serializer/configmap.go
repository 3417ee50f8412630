/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/deployctl/pkg/defaults"
	"github.com/NVIDIA/deployctl/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes ConfigMap output targets
// (cm://namespace/name).
const ConfigMapURIScheme = "cm://"

// fieldManager identifies deployctl in server-side apply operations.
const fieldManager = "deployctl"

// ConfigMapWriter stores a serialized deployment report in a Kubernetes
// ConfigMap so the record of a run lives alongside the deployment. The
// ConfigMap is created on first write and replaced on subsequent runs.
type ConfigMapWriter struct {
	clientset client.Interface
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a ConfigMapWriter for the given namespace
// and name. A nil clientset defers to the shared singleton on first
// Serialize (tests inject a fake).
func NewConfigMapWriter(clientset client.Interface, namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to YAML", "format", format)
		format = FormatYAML
	}
	return &ConfigMapWriter{
		clientset: clientset,
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// Serialize writes the report to the ConfigMap via server-side apply:
//   - data["report.{yaml|json|txt}"]: the serialized report
//   - data["format"], data["timestamp"]: write metadata
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	clientset := w.clientset
	if clientset == nil {
		var err error
		clientset, _, err = client.Get()
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	content, err := marshal(w.format, data)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	dataKey := fmt.Sprintf("report.%s", extensionFor(w.format))
	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/managed-by": fieldManager,
		}).
		WithData(map[string]string{
			dataKey:     string(content),
			"format":    string(w.format),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

	_, err = clientset.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm,
		metav1.ApplyOptions{FieldManager: fieldManager, Force: true})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	slog.Info("deployment report stored",
		"namespace", w.namespace,
		"name", w.name,
		"key", dataKey)
	return nil
}

func extensionFor(format Format) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatTable:
		return "txt"
	default:
		return "yaml"
	}
}

// ParseConfigMapURI parses a cm://namespace/name URI.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: expected cm://namespace/name, got %q", uri)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: expected cm://namespace/name, got %q", uri)
	}
	return parts[0], parts[1], nil
}
