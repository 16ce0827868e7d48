package cmd

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
