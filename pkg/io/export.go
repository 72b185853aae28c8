package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dagflow/pkg/graph"
)

// WriteView encodes a view as indented JSON and writes it to w.
func WriteView(v graph.View, w io.Writer) error {
	data, err := graph.MarshalView(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportView writes a view to a JSON file at path.
func ExportView(v graph.View, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteView(v, w) })
}

// WriteDefinition encodes a definition as indented JSON and writes it to w.
// The output can be re-read with [ReadDefinition].
func WriteDefinition(def graph.Definition, w io.Writer) error {
	data, err := graph.MarshalDefinition(def)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportDefinition writes a definition to a JSON file at path.
func ExportDefinition(def graph.Definition, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteDefinition(def, w) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
