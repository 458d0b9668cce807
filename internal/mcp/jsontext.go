package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// orderedObject is a decoded JSON object that keeps the upstream key order.
type orderedObject []objectField

type objectField struct {
	Key   string
	Value any
}

// set replaces an existing key in place, matching JSON.parse's last-wins rule.
func (o orderedObject) set(key string, value any) orderedObject {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, objectField{Key: key, Value: value})
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Key, ""); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value, ""); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// parseJSON decodes a single JSON document. Escapes are resolved, numbers are
// kept as written and objects keep their key order.
func parseJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := orderedObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = obj.set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// writeJSON encodes v without HTML escaping and without the trailing newline.
func writeJSON(buf *bytes.Buffer, v any, indent string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// prettyJSON renders an upstream body as two-space indented JSON with plain
// slashes and decoded characters. An empty body renders as "".
func prettyJSON(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return `""`, nil
	}

	v, err := parseJSON(body)
	if err != nil {
		return "", fmt.Errorf("upstream returned invalid JSON: %w", err)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, v, "  "); err != nil {
		return "", fmt.Errorf("failed to format response: %w", err)
	}
	return buf.String(), nil
}

// compactBody renders a body on one line: JSON is re-encoded compactly and
// anything else becomes a quoted string.
func compactBody(body string) string {
	var v any = body
	if parsed, err := parseJSON([]byte(body)); err == nil {
		v = parsed
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, v, ""); err != nil {
		return body
	}
	return buf.String()
}
