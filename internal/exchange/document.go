package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/muurk/screwctl/internal/preset"
)

// document is the exported json/yaml shape.
type document struct {
	Screws []preset.Preset `json:"screws" yaml:"screws"`
}

// looseScrew accepts numbers or strings for every field, as older exports
// wrote ids as millisecond timestamps and values as either type.
type looseScrew struct {
	ID     any `json:"id" yaml:"id"`
	Name   any `json:"name" yaml:"name"`
	Torque any `json:"torque" yaml:"torque"`
	Speed  any `json:"speed" yaml:"speed"`
}

type looseDocument struct {
	Screws []looseScrew `json:"screws" yaml:"screws"`
}

func candidatesFromLoose(screws []looseScrew) ([]preset.Candidate, error) {
	if len(screws) == 0 {
		return nil, ErrNoData
	}
	cands := make([]preset.Candidate, len(screws))
	for i, s := range screws {
		cands[i] = preset.Candidate{
			ID:     scalarText(s.ID),
			Name:   scalarText(s.Name),
			Torque: scalarText(s.Torque),
			Speed:  scalarText(s.Speed),
		}
	}
	return cands, nil
}

// scalarText renders a decoded scalar as text. Anything that is not a
// scalar renders as something that will fail numeric coercion.
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return preset.FormatValue(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

type jsonFormat struct{}

func (jsonFormat) Name() string      { return "json" }
func (jsonFormat) Extension() string { return "json" }

func (jsonFormat) Sniff(data []byte) bool {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	return len(data) > 0 && (data[0] == '[' || data[0] == '{') && json.Valid(data)
}

func (jsonFormat) Encode(presets []preset.Preset) ([]byte, error) {
	return json.MarshalIndent(document{Screws: presets}, "", "  ")
}

func (jsonFormat) Decode(data []byte) ([]preset.Candidate, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, ErrNoData
	}

	if data[0] == '[' {
		var screws []looseScrew
		if err := json.Unmarshal(data, &screws); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return candidatesFromLoose(screws)
	}

	var doc looseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return candidatesFromLoose(doc.Screws)
}

type yamlFormat struct{}

func (yamlFormat) Name() string      { return "yaml" }
func (yamlFormat) Extension() string { return "yaml" }

// Sniff accepts text that starts (after comments) with a list item or a
// screws key.
func (yamlFormat) Sniff(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "screws:")
	}
	return false
}

func (yamlFormat) Encode(presets []preset.Preset) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Screws: presets}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlFormat) Decode(data []byte) ([]preset.Candidate, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrNoData
	}

	body := root.Content[0]
	switch body.Kind {
	case yaml.SequenceNode:
		var screws []looseScrew
		if err := body.Decode(&screws); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return candidatesFromLoose(screws)
	case yaml.MappingNode:
		var doc looseDocument
		if err := body.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return candidatesFromLoose(doc.Screws)
	default:
		return nil, fmt.Errorf("parse yaml: expected a list or a screws document")
	}
}
