package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TableConfig is the presentational pass-through used by renderers to
// lay out a result table. It plays no part in the search lifecycle.
type TableConfig struct {
	// Attributes are the result attributes shown, in column order.
	Attributes []string

	// Header maps an attribute to its column title.
	Header map[string]string

	// ColumnClasses maps an attribute to renderer-specific classes.
	ColumnClasses map[string]string
}

// HeaderFor returns the column title for an attribute.
// It falls back to the attribute name.
func (c TableConfig) HeaderFor(attr string) string {
	if h, ok := c.Header[attr]; ok && h != "" {
		return h
	}
	return attr
}

// ClassFor returns the column classes for an attribute.
func (c TableConfig) ClassFor(attr string) string {
	return c.ColumnClasses[attr]
}

// Headers returns the titles of all configured columns.
func (c TableConfig) Headers() []string {
	headers := make([]string, len(c.Attributes))
	for i, attr := range c.Attributes {
		headers[i] = c.HeaderFor(attr)
	}
	return headers
}

// Row extracts the configured attributes from a result.
func (c TableConfig) Row(result any) ([]string, error) {
	attrs, err := ResultAttributes(result)
	if err != nil {
		return nil, err
	}
	row := make([]string, len(c.Attributes))
	for i, attr := range c.Attributes {
		row[i] = attrs[attr]
	}
	return row, nil
}

// ResultAttributes flattens a result's JSON representation into
// attribute name to display string. Nested objects are dot-joined and
// lists are comma-joined.
func ResultAttributes(result any) (map[string]string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("result is not an object: %w", err)
	}
	out := make(map[string]string, len(raw))
	flattenAttributes(raw, "", out)
	return out, nil
}

func flattenAttributes(m map[string]any, prefix string, out map[string]string) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenAttributes(nested, full, out)
			continue
		}
		out[full] = displayValue(value)
	}
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if nested, ok := item.(map[string]any); ok {
				parts = append(parts, displayObject(nested))
				continue
			}
			parts = append(parts, displayValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return displayObject(val)
	default:
		return fmt.Sprint(val)
	}
}

// displayObject renders a location-like object compactly.
func displayObject(m map[string]any) string {
	if chr, ok := m["chromosome"].(string); ok {
		return fmt.Sprintf("%s:%s-%s", chr, displayValue(m["start"]), displayValue(m["end"]))
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
