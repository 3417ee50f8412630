/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package render substitutes resolved configuration values into manifest
// templates.
//
// Templates use envsubst-style ${NAME} placeholders. Values are applied
// as plain text; numeric values must therefore be unquoted in the source
// configuration, which the config loader enforces. Any placeholder left
// unresolved after substitution fails the render with an error listing
// every unresolved name, so a manifest containing literal placeholder
// text can never be applied to a live cluster.
package render
