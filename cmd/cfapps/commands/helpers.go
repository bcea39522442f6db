package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	// JSON and YAML indentation.
	defaultIndent = 2

	Yes = "yes"
	No  = "no"
)

// Static errors for err113 compliance.
var (
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrNoInput             = errors.New("no input available")
)

// outputFormat returns the requested output format.
func outputFormat() string {
	format := strings.ToLower(strings.TrimSpace(viper.GetString(KeyOutput)))
	if format == "" {
		return constants.FormatTable
	}

	return format
}

// render writes data as JSON or YAML, or calls table for the table format.
func render[T any](cmd *cobra.Command, data T, table func(w io.Writer) error) error {
	w := cmd.OutOrStdout()

	switch outputFormat() {
	case constants.FormatJSON:
		return StandardJSONRenderer(w, data)
	case constants.FormatYAML:
		return StandardYAMLRenderer(w, data)
	case constants.FormatTable:
		return table(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutputFormat, outputFormat())
	}
}

// StandardJSONRenderer writes indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// newTable creates a table with the given header.
func newTable(w io.Writer, header ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(header...)

	return table
}

// renderTable renders a table, wrapping the error.
func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// warnf writes a warning line to the command's error stream.
func warnf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: "+format+"\n", args...)
}

// printf writes to the command's output stream.
func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func yesNo(value bool) string {
	if value {
		return Yes
	}

	return No
}

// prompter reads answers from the command's input stream.
type prompter struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

// ask prints label and reads one line.
func (p *prompter) ask(label string) (string, error) {
	_, _ = fmt.Fprint(p.cmd.ErrOrStderr(), label)

	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("%w: %s", ErrNoInput, strings.TrimSpace(label))
	}

	return strings.TrimSpace(line), nil
}

// askSecret reads a line without echo when the input is a terminal.
func (p *prompter) askSecret(label string) (string, error) {
	file, ok := p.cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return p.ask(label)
	}

	_, _ = fmt.Fprint(p.cmd.ErrOrStderr(), label)

	secret, err := term.ReadPassword(int(file.Fd()))

	_, _ = fmt.Fprintln(p.cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(secret), nil
}
