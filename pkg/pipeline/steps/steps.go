/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"github.com/NVIDIA/deployctl/pkg/pipeline"
)

// DeploySequence returns the ordered steps of a full deployment run:
// infrastructure, image, image scan, manifests, observability, GitOps
// sync. The order is fixed; the only branching is the local/prod fork
// expressed through step conditions.
func DeploySequence() []pipeline.Step {
	return []pipeline.Step{
		Infrastructure(),
		Image(),
		ImageScan(),
		Manifests(),
		Observability(),
		GitOpsSync(),
	}
}
