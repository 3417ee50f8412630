/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NVIDIA/deployctl/pkg/cluster"
	"github.com/NVIDIA/deployctl/pkg/config"
	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
	"github.com/NVIDIA/deployctl/pkg/oci"
	"github.com/NVIDIA/deployctl/pkg/render"
)

// Options configures a bundle publish.
type Options struct {
	// Config supplies the manifest directory and substitution values.
	Config *config.DeploymentConfig
	// Profile supplies cluster-derived values (service type, ingress
	// class). Nil renders with file-provided values only.
	Profile *cluster.Profile
	// Target is the output target: a local directory or an
	// oci://registry/repo:tag reference.
	Target string
	// Version tags the artifact when the target has no explicit tag,
	// and annotates the manifest.
	Version string
	// PlainHTTP and InsecureTLS relax registry transport security for
	// local development registries.
	PlainHTTP   bool
	InsecureTLS bool
}

// Result describes where the bundle landed.
type Result struct {
	// Target is the resolved output target.
	Target string `json:"target" yaml:"target"`
	// Digest is the pushed artifact digest. Empty for local output.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
	// Files are the rendered manifest file names.
	Files []string `json:"files" yaml:"files"`
}

// Publish renders every manifest and writes the bundle to the target:
// a local directory, or an OCI registry via ORAS. Rendering fails
// before anything is written if a placeholder is unresolved.
func Publish(ctx context.Context, opts Options) (*Result, error) {
	ref, err := oci.ParseTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	docs, err := render.Dir(opts.Config.ManifestDir, values(opts.Config, opts.Profile))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"no manifests to bundle",
			map[string]any{"dir": opts.Config.ManifestDir})
	}

	if !ref.IsOCI {
		files, err := writeLocal(ref.LocalPath, docs)
		if err != nil {
			return nil, err
		}
		slog.Info("bundle written", "dir", ref.LocalPath, "files", len(files))
		return &Result{Target: ref.String(), Files: files}, nil
	}

	if ref.Tag == "" {
		ref = ref.WithTag(opts.Version)
	}

	stage, err := os.MkdirTemp("", "deployctl-bundle-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to create staging directory", err)
	}
	defer os.RemoveAll(stage)

	files, err := writeLocal(stage, docs)
	if err != nil {
		return nil, err
	}

	pushed, err := oci.Push(ctx, oci.PushOptions{
		SourceDir:   stage,
		Registry:    ref.Registry,
		Repository:  ref.Repository,
		Tag:         ref.Tag,
		PlainHTTP:   opts.PlainHTTP,
		InsecureTLS: opts.InsecureTLS,
		Annotations: map[string]string{
			"org.opencontainers.image.version": opts.Version,
			"org.opencontainers.image.vendor":  "NVIDIA",
			"org.opencontainers.image.title":   fmt.Sprintf("%s manifests", opts.Config.AppName),
		},
	})
	if err != nil {
		return nil, err
	}

	slog.Info("bundle pushed",
		"reference", pushed.Reference,
		"digest", pushed.Digest,
		"files", len(files))

	return &Result{Target: ref.String(), Digest: pushed.Digest, Files: files}, nil
}

// values is the substitution map: file-provided pairs plus values
// derived from the cluster profile when available.
func values(cfg *config.DeploymentConfig, profile *cluster.Profile) map[string]string {
	out := cfg.Values()
	if profile == nil {
		return out
	}
	switch profile.Exposure {
	case cluster.ExposureNodePort:
		out["SERVICE_TYPE"] = "NodePort"
	case cluster.ExposureLoadBalancer:
		out["SERVICE_TYPE"] = "LoadBalancer"
	default:
		out["SERVICE_TYPE"] = "ClusterIP"
	}
	out["INGRESS_CLASS"] = profile.IngressClass
	return out
}

// writeLocal writes rendered documents into dir under their source base
// names and returns the written names sorted by render order.
func writeLocal(dir string, docs []render.Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to create bundle directory", err)
	}

	files := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := filepath.Base(doc.Path)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc.Content), 0o644); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to write %s", name), err)
		}
		files = append(files, name)
	}
	return files, nil
}
