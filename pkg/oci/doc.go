/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package oci pushes rendered manifest bundles to OCI-compliant
// registries using ORAS, and parses bundle output targets
// (oci://registry/repo:tag vs. local directory).
//
// Authentication uses the standard Docker credential store
// (~/.docker/config.json). Artifacts carry the media type
// "application/vnd.nvidia.deployctl.bundle" so consumers can tell them
// apart from runnable images.
package oci
