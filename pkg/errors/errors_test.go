/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeConfigInvalid, "missing required key APP_NAME"),
			want: "[CONFIG_INVALID] missing required key APP_NAME",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeClusterUnreachable, "listing nodes", stderrors.New("connection refused")),
			want: "[CLUSTER_UNREACHABLE] listing nodes: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeStepFailed, "image build failed", cause)

	assert.ErrorIs(t, err, cause)

	var se *StructuredError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, ErrCodeStepFailed, se.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeTimeout, CodeOf(New(ErrCodeTimeout, "rollout wait expired")))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain error")))

	// wrapped through fmt.Errorf still resolves
	wrapped := fmt.Errorf("step infra: %w", New(ErrCodeConfirmationDeclined, "operator declined"))
	assert.Equal(t, ErrCodeConfirmationDeclined, CodeOf(wrapped))
}

func TestIsCode(t *testing.T) {
	err := NewWithContext(ErrCodeUnresolvedPlaceholder, "unresolved placeholders",
		map[string]any{"names": []string{"APP_PORT"}})

	assert.True(t, IsCode(err, ErrCodeUnresolvedPlaceholder))
	assert.False(t, IsCode(err, ErrCodeStepFailed))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeInternal))
}
