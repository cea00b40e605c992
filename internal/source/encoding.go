package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// decodeReader wraps r so its bytes are transcoded from the named IANA
// character set to UTF-8. An empty or UTF-8 name returns r unchanged.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown character encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// resolveEncoding picks the schema's declared encoding, then the
// configured default.
func resolveEncoding(schema *Schema, opts Options) string {
	if schema != nil && schema.Encoding != "" {
		return schema.Encoding
	}
	return opts.DefaultEncoding
}
