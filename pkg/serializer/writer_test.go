/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Name   string            `json:"name" yaml:"name"`
	Port   int               `json:"port" yaml:"port"`
	Labels map[string]string `json:"labels" yaml:"labels"`
}

var testData = sample{
	Name:   "demo-app",
	Port:   3000,
	Labels: map[string]string{"target": "local"},
}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	require.NoError(t, w.Serialize(context.TODO(), testData))

	var got sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testData, got)
}

func TestWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	require.NoError(t, w.Serialize(context.TODO(), testData))

	var got sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testData, got)
}

func TestWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	require.NoError(t, w.Serialize(context.TODO(), testData))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "demo-app")
	assert.Contains(t, out, "Labels.Target")
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, "Name", displayKey("Name"))
	assert.Equal(t, "Labels.Target", displayKey("Labels.target"))
	assert.Equal(t, "Steps.[0].Status", displayKey("Steps.[0].status"))
	assert.Equal(t, "LastSuccessful", displayKey("LastSuccessful"))
}

func TestWriter_UnknownFormatDefaultsToYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)

	require.NoError(t, w.Serialize(context.TODO(), testData))
	var got sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testData, got)
}

func TestNewFileWriterOrStdout_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	w := NewFileWriterOrStdout(FormatYAML, path)

	require.NoError(t, w.Serialize(context.TODO(), testData))
	if c, ok := w.(Closer); ok {
		require.NoError(t, c.Close())
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got sample
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, testData, got)
}

func TestNewFileWriterOrStdout_ConfigMapURI(t *testing.T) {
	w := NewFileWriterOrStdout(FormatJSON, "cm://demo/deploy-report")
	_, ok := w.(*ConfigMapWriter)
	assert.True(t, ok)
}

func TestFormat_IsUnknown(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatYAML.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("csv").IsUnknown())
}
