package source

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Schema is an optional descriptor for a data source, loaded from the
// '@schema' part of a binding. For delimited and fixed-width sources it
// names the fields and their validation rules; for SQLite sources it can
// select the table to read.
type Schema struct {
	// Table overrides the table name for SQLite sources. Defaults to the
	// binding name.
	Table string `yaml:"table"`

	// Encoding is the IANA character set of the data file, e.g. latin1
	// or windows-1252. Empty means the configured default, then UTF-8.
	Encoding string `yaml:"encoding"`

	// Delimiter is the field separator for CSV sources. Defaults to ','.
	Delimiter string `yaml:"delimiter"`

	// Header states whether the data file starts with a heading row.
	// When fields are declared the heading row is skipped but otherwise
	// ignored; without declared fields the heading row names the fields.
	Header *bool `yaml:"header"`

	// Fields declares the columns in file order.
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec describes one column of a data source.
type FieldSpec struct {
	Name string `yaml:"name"`

	// Width is the column width in characters, required for fixed-width
	// sources and ignored elsewhere.
	Width int `yaml:"width"`

	// Pattern is an optional regular expression every non-empty value
	// must match in full.
	Pattern string `yaml:"pattern"`

	// AllowEmpty permits empty values. Validation only applies when a
	// pattern is set or AllowEmpty is false with a pattern present, so
	// plain descriptors stay permissive.
	AllowEmpty bool `yaml:"allow_empty"`
}

// LoadSchema reads and validates a YAML schema descriptor.
func LoadSchema(path string) (*Schema, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: descriptor path comes from the user's binding definition
	if err != nil {
		return nil, fmt.Errorf("failed to read schema descriptor: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(content, &schema); err != nil {
		return nil, fmt.Errorf("invalid schema descriptor: %w", err)
	}

	seen := make(map[string]bool, len(schema.Fields))
	for i, field := range schema.Fields {
		if !isIdentifier(field.Name) {
			return nil, fmt.Errorf("field %d: name must be an identifier but is: %q", i+1, field.Name)
		}
		if seen[field.Name] {
			return nil, fmt.Errorf("duplicate field name: %q", field.Name)
		}
		seen[field.Name] = true
		if field.Pattern != "" {
			if _, err := regexp.Compile(field.Pattern); err != nil {
				return nil, fmt.Errorf("field %q: invalid pattern: %v", field.Name, err)
			}
		}
	}
	return &schema, nil
}

// hasHeader resolves the header flag: explicit value wins, otherwise a
// heading row is assumed only when the descriptor does not declare
// fields itself.
func (s *Schema) hasHeader() bool {
	if s == nil {
		return true
	}
	if s.Header != nil {
		return *s.Header
	}
	return len(s.Fields) == 0
}

// fieldNames returns the declared field names, or nil.
func (s *Schema) fieldNames() []string {
	if s == nil || len(s.Fields) == 0 {
		return nil
	}
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// validator compiles per-field validation checks once per activation.
type validator struct {
	source  string
	locator string
	specs   []FieldSpec
	regexps []*regexp.Regexp
}

func newValidator(sourceName, locator string, schema *Schema) *validator {
	if schema == nil || len(schema.Fields) == 0 {
		return nil
	}
	v := &validator{
		source:  sourceName,
		locator: locator,
		specs:   schema.Fields,
		regexps: make([]*regexp.Regexp, len(schema.Fields)),
	}
	for i, f := range schema.Fields {
		if f.Pattern != "" {
			// Patterns were compile-checked by LoadSchema.
			v.regexps[i] = regexp.MustCompile("^(?:" + f.Pattern + ")$")
		}
	}
	return v
}

// check validates one data row, returning a DataError naming the row.
func (v *validator) check(rowNum int, values []string) error {
	if v == nil {
		return nil
	}
	if len(values) != len(v.specs) {
		return &DataError{
			Source:  v.source,
			Locator: v.locator,
			Row:     rowNum,
			Message: fmt.Sprintf("expected %d fields but found %d", len(v.specs), len(values)),
		}
	}
	for i, value := range values {
		spec := v.specs[i]
		if value == "" {
			if spec.AllowEmpty || v.regexps[i] == nil {
				continue
			}
			return &DataError{
				Source:  v.source,
				Locator: v.locator,
				Row:     rowNum,
				Message: fmt.Sprintf("field %q must not be empty", spec.Name),
			}
		}
		if re := v.regexps[i]; re != nil && !re.MatchString(value) {
			return &DataError{
				Source:  v.source,
				Locator: v.locator,
				Row:     rowNum,
				Message: fmt.Sprintf("field %q value %q does not match pattern %q", spec.Name, value, spec.Pattern),
			}
		}
	}
	return nil
}
