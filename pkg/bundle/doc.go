/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package bundle renders the application manifests and publishes them
// as a bundle, either into a local directory or to an OCI registry.
package bundle
