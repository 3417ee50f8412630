/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package runner executes the external CLIs the pipeline orchestrates
// (container tool, kubectl, IaC tool, GitOps tool) as child processes.
//
// Every invocation captures exit code, stdout, and stderr; a non-zero
// exit is propagated as a STEP_FAILED error carrying the output, never
// swallowed. Children run in their own process group and the whole group
// is killed on context cancellation, so an interrupt during a build or
// apply leaves no orphans behind.
//
// Retry is opt-in and restricted to idempotent read-only checks via
// Poll/RunIdempotent with a fixed interval and a bounded wall-clock
// timeout. Mutating commands are attempted exactly once per run.
package runner
