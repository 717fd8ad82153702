// Package sorbet reads the metrics file written by `srb tc --metrics-file`.
package sorbet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultPrefix is the prefix Sorbet puts in front of every metric name.
const DefaultPrefix = "ruby_typer.unknown."

// ErrInvalidMetrics wraps every schema or decoding failure.
var ErrInvalidMetrics = errors.New("invalid sorbet metrics")

// Strictness levels in sigil order.
var Strictnesses = []string{"ignore", "false", "true", "strict", "strong"}

const sigilPrefix = "types.input.files.sigil."

const metricsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["metrics"],
  "properties": {
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "value"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "value": {"type": "integer"}
        }
      }
    }
  }
}`

var schema = mustCompile()

func mustCompile() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(metricsSchema))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("metrics.json", doc); err != nil {
		panic(err)
	}
	return c.MustCompile("metrics.json")
}

type document struct {
	Metrics []struct {
		Name  string `json:"name"`
		Value int64  `json:"value"`
	} `json:"metrics"`
}

// Metrics maps metric names, with the prefix removed, to their values.
type Metrics struct {
	values map[string]int64
}

// ParseMetrics validates a metrics document and strips prefix from every
// name. Names without the prefix are kept as written.
func ParseMetrics(data []byte, prefix string) (*Metrics, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetrics, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetrics, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetrics, err)
	}

	m := &Metrics{values: make(map[string]int64, len(doc.Metrics))}
	for _, entry := range doc.Metrics {
		m.values[strings.TrimPrefix(entry.Name, prefix)] = entry.Value
	}
	return m, nil
}

// ParseFile reads and parses a metrics file.
func ParseFile(path, prefix string) (*Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseMetrics(data, prefix)
}

// Get returns the value of a metric and whether it was present.
func (m *Metrics) Get(name string) (int64, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Metrics) value(name string) int64 {
	return m.values[name]
}

// Names lists every metric name in lexical order.
func (m *Metrics) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of metrics.
func (m *Metrics) Len() int { return len(m.values) }

// FilesByStrictness returns the file count for every strictness level.
// Missing levels count as zero.
func (m *Metrics) FilesByStrictness() map[string]int64 {
	out := make(map[string]int64, len(Strictnesses))
	for _, s := range Strictnesses {
		out[s] = m.value(sigilPrefix + s)
	}
	return out
}

// FilesCount sums the strictness histogram.
func (m *Metrics) FilesCount() int64 {
	var total int64
	for _, n := range m.FilesByStrictness() {
		total += n
	}
	return total
}

// Percent returns part as a percentage of total, or 0 when total is 0.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Snapshot summarises typing coverage for one type-checker run.
type Snapshot struct {
	Files             int64            `json:"files" toon:"files" yaml:"files"`
	Modules           int64            `json:"modules" toon:"modules" yaml:"modules"`
	Classes           int64            `json:"classes" toon:"classes" yaml:"classes"`
	SingletonClasses  int64            `json:"singleton_classes" toon:"singleton_classes" yaml:"singleton_classes"`
	MethodsWithSig    int64            `json:"methods_with_sig" toon:"methods_with_sig" yaml:"methods_with_sig"`
	MethodsWithoutSig int64            `json:"methods_without_sig" toon:"methods_without_sig" yaml:"methods_without_sig"`
	CallsTyped        int64            `json:"calls_typed" toon:"calls_typed" yaml:"calls_typed"`
	CallsUntyped      int64            `json:"calls_untyped" toon:"calls_untyped" yaml:"calls_untyped"`
	Sigils            map[string]int64 `json:"sigils" toon:"sigils" yaml:"sigils"`
}

// Snapshot builds the coverage summary.
func (m *Metrics) Snapshot() Snapshot {
	withSig := m.value("types.sig.count")
	typed := m.value("types.input.sends.typed")
	return Snapshot{
		Files:             m.value("types.input.files"),
		Modules:           m.value("types.input.modules.total"),
		Classes:           m.value("types.input.classes.total"),
		SingletonClasses:  m.value("types.input.singleton_classes.total"),
		MethodsWithSig:    withSig,
		MethodsWithoutSig: max(m.value("types.input.methods.total")-withSig, 0),
		CallsTyped:        typed,
		CallsUntyped:      max(m.value("types.input.sends.total")-typed, 0),
		Sigils:            m.FilesByStrictness(),
	}
}

// SigCoverage is the share of methods that carry a signature.
func (s Snapshot) SigCoverage() float64 {
	return Percent(s.MethodsWithSig, s.MethodsWithSig+s.MethodsWithoutSig)
}

// CallCoverage is the share of typed call sites.
func (s Snapshot) CallCoverage() float64 {
	return Percent(s.CallsTyped, s.CallsTyped+s.CallsUntyped)
}
