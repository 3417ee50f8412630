/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package access resolves the reachable endpoint for a deployed workload
// after a successful pipeline run.
//
// The strategy follows the detected cluster profile: a node address plus
// NodePort for local clusters, a bounded poll for the external address on
// LoadBalancer-capable clusters, and an explicit port-forward instruction
// for unknown clusters. The reporter never blocks indefinitely; when a
// load balancer address has not materialized within the bound it returns
// the manual check command instead.
package access
