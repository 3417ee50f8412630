/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cluster classifies the active Kubernetes cluster into a
// deployment profile.
//
// Detect inspects node labels, annotations, and spec.providerID values
// against an ordered list of typed signature predicates (first match
// wins) and returns a read-only Profile carrying the derived
// service-exposure mode, ingress class, and load-balancer capability.
// Typical providerID shapes:
//
//   - EKS: aws:///us-west-2a/i-0123456789abcdef0
//   - GKE: gce://my-project/us-central1-a/gke-cluster-node
//   - AKS: azure:///subscriptions/.../virtualMachines/...
//
// Clusters that match no signature get the conservative fallback:
// port-forward exposure and no load-balancer assumption.
package cluster
