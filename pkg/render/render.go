/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package render

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

// placeholder matches ${NAME} tokens. Names follow environment-variable
// syntax.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Document is one rendered manifest file.
type Document struct {
	// Path is the source file path the document was rendered from.
	Path string `json:"path" yaml:"path"`
	// Content is the fully substituted manifest text.
	Content string `json:"content" yaml:"content"`
}

// Substitute replaces every ${NAME} placeholder in text with its value
// from values. Values are applied as text with no type coercion.
//
// After substitution the result is scanned for residual placeholder
// syntax; any remaining token is fatal (UNRESOLVED_PLACEHOLDER) and the
// error lists every unresolved name. This prevents applying a manifest
// containing literal placeholder text to a live cluster. Substitution is
// idempotent: re-running it on fully substituted text changes nothing.
func Substitute(text string, values map[string]string) (string, error) {
	out := placeholder.ReplaceAllStringFunc(text, func(token string) string {
		name := placeholder.FindStringSubmatch(token)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})

	if names := Unresolved(out); len(names) > 0 {
		return "", apperrors.NewWithContext(apperrors.ErrCodeUnresolvedPlaceholder,
			fmt.Sprintf("unresolved placeholders: %s", strings.Join(names, ", ")),
			map[string]any{"names": names})
	}
	return out, nil
}

// Unresolved returns the sorted, de-duplicated placeholder names still
// present in text.
func Unresolved(text string) []string {
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File renders a single manifest file and validates the result parses
// as YAML before it can reach any apply step.
func File(path string, values map[string]string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to read manifest %q", path), err)
	}

	content, err := Substitute(string(raw), values)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeUnresolvedPlaceholder,
			fmt.Sprintf("manifest %q", path), err,
			map[string]any{"path": path})
	}

	if err := validateYAML(content); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("rendered manifest %q is not valid YAML", path), err)
	}

	return &Document{Path: path, Content: content}, nil
}

// Dir renders every *.yaml / *.yml file under dir (non-recursive),
// sorted by name for a stable apply order.
func Dir(dir string, values map[string]string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to read manifest directory %q", dir), err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		doc, err := File(filepath.Join(dir, entry.Name()), values)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if len(docs) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidRequest,
			"no manifest files found in %q", dir)
	}

	slog.Debug("manifests rendered", "dir", dir, "count", len(docs))
	return docs, nil
}

// Combined joins rendered documents into one multi-document YAML stream
// suitable for piping to kubectl apply -f -.
func Combined(docs []Document) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(strings.TrimRight(doc.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// validateYAML checks that every document in a multi-document stream
// parses.
func validateYAML(content string) error {
	dec := yaml.NewDecoder(strings.NewReader(content))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
