package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxDecodeDepth bounds nesting during decode so hostile payloads (the
// decoder is reachable from the HTTP API) cannot exhaust the stack.
const maxDecodeDepth = 512

// ErrTooDeep is returned by [Decode] when component nesting exceeds the
// supported depth.
var ErrTooDeep = errors.New("component tree nested too deeply")

// Decode parses wire-format JSON into a component tree. All three wire
// shapes are accepted:
//
//   - a bare JSON string: a text-only component
//   - a JSON object: a full component
//   - a JSON array: the first element is the host, the remaining
//     elements are appended to its extra list
//
// These shapes nest: extra entries and hover values may themselves be
// strings, objects or arrays. Unknown object keys are ignored. A null or
// empty input returns ErrNilComponent; any other shape the format cannot
// mean (numbers, booleans, null children) is rejected, since silently
// guessing at malformed trees would mask caller bugs.
func Decode(data []byte) (*Component, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrNilComponent
	}
	c, err := decodeAny(trimmed, 0)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNilComponent
	}
	return c, nil
}

// DecodeReader reads all of r and decodes it like [Decode].
func DecodeReader(r io.Reader) (*Component, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read component: %w", err)
	}
	return Decode(data)
}

// decodeAny decodes one wire value (string, object or array) into a
// component. JSON null decodes to nil with no error; callers decide
// whether null is legal in their position.
func decodeAny(raw json.RawMessage, depth int) (*Component, error) {
	if depth > maxDecodeDepth {
		return nil, ErrTooDeep
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrNilComponent
	}

	switch trimmed[0] {
	case 'n': // null
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil || v != nil {
			return nil, fmt.Errorf("invalid component value %q", truncateForError(trimmed))
		}
		return nil, nil

	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("invalid component string: %w", err)
		}
		return Text(s), nil

	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("invalid component list: %w", err)
		}
		if len(entries) == 0 {
			return nil, errors.New("component list must not be empty")
		}
		host, err := decodeAny(entries[0], depth+1)
		if err != nil {
			return nil, err
		}
		if host == nil {
			return nil, ErrNilChild
		}
		for _, entry := range entries[1:] {
			sibling, err := decodeAny(entry, depth+1)
			if err != nil {
				return nil, err
			}
			if sibling == nil {
				return nil, ErrNilChild
			}
			host.Extra = append(host.Extra, sibling)
		}
		return host, nil

	case '{':
		c := &Component{}
		if err := c.unmarshalObject(trimmed, depth); err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("invalid component value %q", truncateForError(trimmed))
	}
}

// UnmarshalJSON accepts any of the wire shapes, so a Component field
// nested in a larger document (a stored chatglass document, an API
// payload) decodes the same way [Decode] does.
func (c *Component) UnmarshalJSON(data []byte) error {
	decoded, err := decodeAny(data, 0)
	if err != nil {
		return err
	}
	if decoded == nil {
		return ErrNilComponent
	}
	*c = *decoded
	return nil
}

// unmarshalObject decodes the object form. Extra needs manual handling
// because its entries may be strings or arrays, not just objects.
func (c *Component) unmarshalObject(data []byte, depth int) error {
	type alias Component
	aux := struct {
		Extra []json.RawMessage `json:"extra"`
		*alias
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("invalid component object: %w", err)
	}

	c.Extra = nil
	for i, raw := range aux.Extra {
		child, err := decodeAny(raw, depth+1)
		if err != nil {
			return fmt.Errorf("extra[%d]: %w", i, err)
		}
		if child == nil {
			return fmt.Errorf("extra[%d]: %w", i, ErrNilChild)
		}
		c.Extra = append(c.Extra, child)
	}
	return nil
}

// UnmarshalJSON decodes a hover event, normalizing the show_text payload.
// The content may live under "value" (legacy) or "contents" (modern);
// value wins when both are present. String and array payloads become
// component trees. A payload whose shape cannot carry text (numbers,
// booleans, item data that fails to decode) leaves Value nil rather than
// failing: a broken tooltip must never block rendering of the host text.
func (h *HoverEvent) UnmarshalJSON(data []byte) error {
	aux := struct {
		Action   string          `json:"action"`
		Value    json.RawMessage `json:"value"`
		Contents json.RawMessage `json:"contents"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("invalid hover event: %w", err)
	}

	h.Action = aux.Action
	h.Value = nil

	payload := aux.Value
	if len(payload) == 0 {
		payload = aux.Contents
	}
	if len(payload) == 0 {
		return nil
	}
	if v, err := decodeAny(payload, 0); err == nil {
		h.Value = v
	}
	return nil
}

func truncateForError(raw []byte) string {
	const max = 24
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
