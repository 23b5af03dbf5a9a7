package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Tree Serialization API
// =============================================================================

// ReadTreeFile reads a JSON file containing a nested tree.
func ReadTreeFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

// ReadTree decodes a nested tree from an io.Reader.
func ReadTree(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("tree root must have an id")
	}
	return &t, nil
}

// =============================================================================
// FlatGraph Serialization API
// =============================================================================

// ReadFlatGraphFile reads a JSON file containing flat node/edge arrays.
func ReadFlatGraphFile(path string) (FlatGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return FlatGraph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFlatGraph(f)
}

// ReadFlatGraph decodes a flat graph from an io.Reader. Structure is not
// validated beyond JSON shape: duplicate parents, missing roots, and
// disconnected components are handled by the layout fallbacks, not here.
func ReadFlatGraph(r io.Reader) (FlatGraph, error) {
	var g FlatGraph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return FlatGraph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to pretty-printed JSON bytes.
// Encoding order follows node/edge order, so identical layouts produce
// identical bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
// The file is created with 0644 permissions.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// WriteLayout writes a layout as JSON to an io.Writer.
func WriteLayout(l Layout, w io.Writer) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
