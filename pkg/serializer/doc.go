/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer formats deployctl output (cluster profiles, rendered
// manifests, deployment reports) as JSON, YAML, or a flattened table.
//
// Destinations are selected by the output path:
//
//	""                      stdout
//	./report.yaml           file
//	cm://demo/deploy-report Kubernetes ConfigMap
//
// File-backed writers must be closed:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	if c, ok := w.(serializer.Closer); ok {
//	    defer c.Close()
//	}
//	return w.Serialize(ctx, report)
package serializer
