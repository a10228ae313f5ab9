package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatTable}

// Tabular values can be rendered as a table.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// tableStyle styles a table cell. The header is row 0, data rows start at 1.
func tableStyle(row, _ int) lipgloss.Style {
	if row == 0 {
		return headerStyle
	}
	return cellStyle
}

// Write renders value in format to w.
func Write(w io.Writer, format string, value any) error {
	out, err := Render(format, value)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Render returns value rendered in format, always ending with a newline.
func Render(format string, value any) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		if s, ok := value.(fmt.Stringer); ok {
			return s.String() + "\n", nil
		}
		return fmt.Sprintf("%+v\n", value), nil
	case FormatJSON:
		b, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return "", errors.Wrapf(err, "failed to marshal json")
		}
		return string(b) + "\n", nil
	case FormatYAML:
		b, err := yaml.Marshal(value)
		if err != nil {
			return "", errors.Wrapf(err, "failed to marshal yaml")
		}
		return string(b), nil
	case FormatTable:
		tab, ok := value.(Tabular)
		if !ok {
			return "", errors.Errorf("%T cannot be rendered as a table", value)
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(tab.Header()...).
			Rows(tab.Rows()...).
			StyleFunc(tableStyle)
		return t.String() + "\n", nil
	default:
		return "", errors.Errorf("unknown output format %q, expected one of %s", format, strings.Join(Formats, ", "))
	}
}
