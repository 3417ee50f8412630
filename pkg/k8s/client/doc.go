/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package client provides a singleton Kubernetes client with automatic
// kubeconfig discovery.
//
// The client is initialized once on first use and cached for subsequent
// calls, so the detector, rollout waiter, and access reporter share one
// connection to the API server:
//
//	clientset, _, err := client.Get()
//	if err != nil {
//	    return err
//	}
//	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
//
// Discovery order: KUBECONFIG environment variable, ~/.kube/config,
// in-cluster service account. CLI commands with an explicit --kubeconfig
// flag should use GetWithKubeconfig, which bypasses the cache only when
// a path is given.
package client
