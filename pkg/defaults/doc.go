/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults centralizes timeout and interval constants so every
// component uses consistent, documented values instead of scattered
// magic numbers.
package defaults
