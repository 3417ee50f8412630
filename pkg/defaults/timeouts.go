/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Deployment timeouts for the end-to-end run.
const (
	// DeployTimeout bounds the whole deployment sequence.
	DeployTimeout = 30 * time.Minute
)

// Rollout timeouts for waiting on applied workloads.
const (
	// RolloutTimeout is how long to wait for a Deployment to become
	// available after apply.
	RolloutTimeout = 5 * time.Minute

	// RolloutPollInterval is the interval between rollout status checks.
	RolloutPollInterval = 3 * time.Second
)

// GitOps timeouts for sync and health checks.
const (
	// GitOpsSyncTimeout is how long to wait for the GitOps application
	// to report healthy after a sync.
	GitOpsSyncTimeout = 5 * time.Minute

	// GitOpsSyncPollInterval is the interval between health checks.
	GitOpsSyncPollInterval = 10 * time.Second
)

// Access timeouts for endpoint resolution.
const (
	// LoadBalancerTimeout is how long to wait for a LoadBalancer service
	// to publish an external endpoint before falling back to a manual
	// instruction.
	LoadBalancerTimeout = 2 * time.Minute

	// AccessPollInterval is the interval between service status checks.
	AccessPollInterval = 5 * time.Second
)

// Process timeouts for external command execution.
const (
	// CommandWaitDelay bounds how long Wait blocks on I/O pipes after a
	// child process is killed.
	CommandWaitDelay = 5 * time.Second
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second
)
