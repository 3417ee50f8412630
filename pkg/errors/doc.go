/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package errors defines the structured error taxonomy shared by all
// deployctl components.
//
// Every fatal condition in the pipeline maps to one ErrorCode so that
// callers (and the CLI exit path) can branch on the class of failure
// without string matching:
//
//	cfg, err := config.Load(path)
//	if errors.IsCode(err, errors.ErrCodeConfigInvalid) {
//	    // bad input, nothing was touched
//	}
//
// StructuredError carries the code, a human-readable message, the
// underlying cause (preserved for errors.Is/errors.As), and optional
// context such as the failing step name or captured command output.
package errors
