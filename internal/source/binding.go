package source

import (
	"fmt"
	"strings"
	"unicode"
)

// Binding describes one command-line data source definition of the form
// name:dataPath[@schemaPath]. The name becomes a scope binding during
// for loops, so it must be a valid identifier.
type Binding struct {
	Name       string
	DataPath   string
	SchemaPath string
}

// ParseBinding splits a data source definition. The schema descriptor
// after '@' is optional.
func ParseBinding(definition string) (Binding, error) {
	name, rest, ok := strings.Cut(definition, ":")
	if !ok || rest == "" {
		return Binding{}, fmt.Errorf("data source must match 'name:path[@schema]' but is: %q", definition)
	}
	if !isIdentifier(name) {
		return Binding{}, fmt.Errorf("data source name must be an identifier but is: %q", name)
	}

	dataPath, schemaPath, _ := strings.Cut(rest, "@")
	if dataPath == "" {
		return Binding{}, fmt.Errorf("data source %q has an empty data path", name)
	}
	return Binding{Name: name, DataPath: dataPath, SchemaPath: schemaPath}, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}
