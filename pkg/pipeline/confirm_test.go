/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/deployctl/pkg/config"
)

func TestInteractive_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "yes\n", true},
		{"y", "y\n", true},
		{"uppercase yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"garbage", "sure why not\n", false},
		{"eof without input", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			c := &Interactive{In: strings.NewReader(tc.input), Out: out}

			ok, err := c.Confirm("apply infrastructure changes?")
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
			assert.Contains(t, out.String(), "apply infrastructure changes?")
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestUnattended_Confirm(t *testing.T) {
	apply := &Unattended{Mode: config.ConfirmApply}
	ok, err := apply.Confirm("anything")
	require.NoError(t, err)
	assert.True(t, ok)

	plan := &Unattended{Mode: config.ConfirmPlanOnly}
	ok, err = plan.Confirm("anything")
	require.NoError(t, err)
	assert.False(t, ok)

	unset := &Unattended{}
	ok, err = unset.Confirm("anything")
	require.NoError(t, err)
	assert.False(t, ok, "missing intent declines")
}
