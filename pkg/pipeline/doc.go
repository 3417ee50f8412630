/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline provides the deployment state machine: a linear
// sequence of conditional steps executed against a shared environment,
// producing a run report. A step failure halts the run with the last
// successful state recorded; a declined confirmation halts it
// gracefully.
package pipeline
