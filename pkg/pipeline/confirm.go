/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/NVIDIA/deployctl/pkg/config"
)

// Confirmer gates steps that provision billable cloud resources or
// destroy existing state. The implementation is resolved once at startup
// from the interactive/unattended mode; downstream confirmation logic is
// a pure function of that resolved strategy — consent is never inferred
// ad hoc.
type Confirmer interface {
	// Confirm reports whether the operator approved the described action.
	Confirm(action string) (bool, error)
}

// Interactive prompts the operator on a terminal.
type Interactive struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prompts with the action description and accepts y/yes
// (case-insensitive). Anything else, including EOF, declines.
func (c *Interactive) Confirm(action string) (bool, error) {
	fmt.Fprintf(c.Out, "%s [y/N]: ", action)

	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Unattended answers from the pre-declared intent in the configuration:
// CONFIRM=apply approves, CONFIRM=plan (or unset) declines.
type Unattended struct {
	Mode config.ConfirmMode
}

// Confirm applies the declared intent without prompting.
func (c *Unattended) Confirm(string) (bool, error) {
	return c.Mode == config.ConfirmApply, nil
}
