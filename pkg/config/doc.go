/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads and validates the deployment environment file.
//
// The file uses dotenv key=value syntax. Load parses it, verifies every
// required key is present, checks that numeric keys are unquoted
// integers, and validates the composed image reference. On success it
// returns an immutable DeploymentConfig; on any violation it returns a
// CONFIG_INVALID error naming the offending key, before any cluster or
// cloud action runs.
package config
