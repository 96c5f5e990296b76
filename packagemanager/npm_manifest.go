package packagemanager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// jsonObject is a JSON object that remembers the order of its keys, so a
// rewritten package.json only differs from the original where overridden.
type jsonObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func newJSONObject() *jsonObject {
	return &jsonObject{
		values: make(map[string]json.RawMessage),
	}
}

func (o *jsonObject) get(key string) (json.RawMessage, bool) {
	value, ok := o.values[key]
	return value, ok
}

// set keeps the position of an existing key.
func (o *jsonObject) set(key string, value json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

func (o *jsonObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse JSON document: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse JSON document: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to parse value of %q: %w", key, err)
		}

		o.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to parse JSON document: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected content after JSON object")
	}

	return nil
}

func (o *jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := encodeJSON(key, "")
		if err != nil {
			return nil, err
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// overlayJSONSection sets the given entries on the object stored under key,
// creating it when it is missing or not an object.
func overlayJSONSection(doc *jsonObject, key string, entries map[string]string) error {
	section := newJSONObject()

	if raw, ok := doc.get(key); ok && isJSONObject(raw) {
		if err := section.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", key, err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(entries)) {
		value, err := encodeJSON(entries[name], "")
		if err != nil {
			return err
		}

		section.set(name, value)
	}

	raw, err := encodeJSON(section, "")
	if err != nil {
		return err
	}

	doc.set(key, raw)
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// encodeJSON marshals without HTML escaping, so ranges such as ">=1.0.0 <2"
// and scripts such as "lint && test" are written as is. A non-empty indent
// produces a document terminated by a newline.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent != "" {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	if indent == "" {
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}

	return buf.Bytes(), nil
}
