/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the deployctl command-line interface.
//
// The deployctl CLI drives one-command demo application deployments:
// it loads a declarative environment file, detects the active cluster
// distribution, and runs the deployment sequence end to end.
//
// Commands:
//   - deploy: run the full deployment sequence
//   - detect: classify the active cluster and report the profile
//   - render: render manifests without applying them
//   - access: report how to reach the deployed application
//   - bundle: render manifests and publish them as an OCI artifact
//   - version: print build metadata
package cli
