/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides structured logging defaults for deployctl.
//
// It wraps the standard library slog package with JSON output to stderr,
// module/version context on every record, and level selection via the
// LOG_LEVEL environment variable or the --log-level flag:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("deployctl", version)
//	    slog.Info("starting", "target", cfg.Target)
//	}
//
// Supported levels (case-insensitive): debug, info, warn/warning, error.
// Debug level additionally records source locations.
package logging
