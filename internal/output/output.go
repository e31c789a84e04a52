// Package output writes outline results as JSON and checks them against the
// published schema.
package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

//go:embed outline.schema.json
var schemaJSON []byte

const schemaURL = "outline.schema.json"

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load outline schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile outline schema: %w", err)
	}
	return schema, nil
})

// Schema returns the JSON schema of the output document.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// Validate checks encoded output against the schema.
func Validate(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode output for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}
	return nil
}

// Marshal encodes v with two-space indentation, leaving non-ASCII and HTML
// characters as they are.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode marshals res, validating it first when validate is set.
func Encode(res outline.Result, validate bool) ([]byte, error) {
	data, err := Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}
	if validate {
		if err := Validate(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// WriteFile writes res to path, creating parent directories.
func WriteFile(path string, res outline.Result, validate bool) error {
	data, err := Encode(res, validate)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
