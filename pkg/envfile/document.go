package envfile

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/tidwall/jsonc"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	rawMap = orderedmap.OrderedMap[string, json.RawMessage]

	// Value is a single generated variable.
	Value struct {
		Key   string
		Value string
	}

	// Document is a parsed env.json file: a map of environment sections, each holding variables.
	// Key order is preserved so rewriting a file only changes what was merged in.
	Document struct {
		sections *rawMap
	}
)

// Parse decodes an env.json file. Comments and trailing commas are accepted.
func Parse(data []byte) (*Document, error) {
	data = jsonc.ToJSON(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, eris.New("expected a JSON object")
	}

	doc := &Document{sections: orderedmap.New[string, json.RawMessage]()}
	err := json.Unmarshal(trimmed, doc.sections)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to parse JSON")
	}

	return doc, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseSection(name string, raw json.RawMessage) (*rawMap, error) {
	vars := orderedmap.New[string, json.RawMessage]()
	if raw == nil || isNull(raw) {
		return vars, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, eris.Errorf("section %s is not an object", name)
	}

	err := json.Unmarshal(trimmed, vars)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse section %s", name)
	}

	return vars, nil
}

// Sections lists the section names in file order.
func (d *Document) Sections() []string {
	names := make([]string, 0, d.sections.Len())
	for pair := d.sections.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Keys lists the variable names of a section in file order.
func (d *Document) Keys(section string) ([]string, error) {
	raw, _ := d.sections.Get(section)
	vars, err := parseSection(section, raw)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, vars.Len())
	for pair := vars.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys, nil
}

// Get returns a string variable. ok is false if the section or key is missing or the value isn't a string.
func (d *Document) Get(section, key string) (string, bool) {
	raw, found := d.sections.Get(section)
	if !found {
		return "", false
	}

	vars, err := parseSection(section, raw)
	if err != nil {
		return "", false
	}

	value, found := vars.Get(key)
	if !found {
		return "", false
	}

	var str string
	if json.Unmarshal(value, &str) != nil {
		return "", false
	}
	return str, true
}

// Merge returns a copy of doc with values set in section. The section is appended if it doesn't
// exist. Existing keys keep their position, new keys are appended. doc isn't modified.
func Merge(doc *Document, section string, values []Value) (*Document, error) {
	result := &Document{sections: orderedmap.New[string, json.RawMessage]()}
	for pair := doc.sections.Oldest(); pair != nil; pair = pair.Next() {
		result.sections.Set(pair.Key, pair.Value)
	}

	raw, _ := doc.sections.Get(section)
	vars, err := parseSection(section, raw)
	if err != nil {
		return nil, err
	}

	for _, value := range values {
		encoded, err := json.Marshal(value.Value)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to encode %s", value.Key)
		}

		vars.Set(value.Key, encoded)
	}

	merged, err := vars.MarshalJSON()
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to encode section %s", section)
	}

	result.sections.Set(section, merged)
	return result, nil
}

// Encode serializes the document as tab-indented JSON followed by a newline.
func (d *Document) Encode() ([]byte, error) {
	data, err := d.sections.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "Failed to encode document")
	}

	var buf bytes.Buffer
	err = json.Indent(&buf, data, "", "\t")
	if err != nil {
		return nil, eris.Wrap(err, "Failed to format document")
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
