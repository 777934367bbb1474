package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/alpkeskin/gotoon"
	jsoniter "github.com/json-iterator/go"
	"github.com/tinytelemetry/carbondash/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is an output encoding for the report command.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatToon Format = "toon"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatToon:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (text|json|toon)", s)
}

// Encode writes d to w in the requested format.
func Encode(w io.Writer, d *model.Dashboard, f Format) error {
	switch f {
	case FormatJSON:
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case FormatToon:
		out, err := gotoon.Encode(d)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	default:
		_, err := io.WriteString(w, RenderText(d))
		return err
	}
}
