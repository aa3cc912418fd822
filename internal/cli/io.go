package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/slotwise/internal/contract"
)

// ErrNoInput is returned when a request would be read from an interactive
// terminal.
var ErrNoInput = errors.New("no input: pass a JSON file or pipe a request on stdin")

// isTerminal reports whether v is a terminal file.
func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// readInput returns the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return data, nil
	}
	in := cmd.InOrStdin()
	if isTerminal(in) {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q: use json or yaml", format)
}

// outputFormat picks YAML for .yaml and .yml output files regardless of
// --format.
func outputFormat(format, path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return format
}

// renderJSON re-encodes a JSON document. JSON keeps two-space
// indentation; YAML keeps the document's key order.
func renderJSON(format string, raw []byte) ([]byte, error) {
	if format != formatYAML {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles a JSON source leaves on
// every node.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// writeResult encodes v to path, or stdout for "" and "-".
func (s *state) writeResult(cmd *cobra.Command, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data, err := renderJSON(outputFormat(s.format, path), raw)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if path != "" && path != "-" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// printError reports a failed command on w. Validation problems are
// listed one per line.
func printError(w io.Writer, err error) {
	var verr *contract.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(w, "Validation failed:")
		for _, p := range verr.Problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	case errors.Is(err, contract.ErrMalformedJSON):
		fmt.Fprintf(w, "Validation failed: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
