/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package steps provides the ordered deployment steps composed into the
// standard pipeline: infrastructure provisioning, image build and push,
// image vulnerability scan, manifest rendering and apply, observability
// setup, and GitOps sync.
package steps
