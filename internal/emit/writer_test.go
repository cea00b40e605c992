package emit

import (
	"strings"
	"testing"
)

func TestWriter_LiteralPassesThrough(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)

	input := `<a attr="v"><!-- note --><![CDATA[1 < 2]]></a>`
	if err := w.Literal(input); err != nil {
		t.Fatalf("failed to write literal: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}

	if buf.String() != input {
		t.Errorf("literal changed: %q", buf.String())
	}
}

func TestWriter_TextEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"ampersand", "a & b", "a &amp; b"},
		{"angle brackets", "<tag>", "&lt;tag&gt;"},
		{"quote", `say "hi"`, "say &#34;hi&#34;"},
		{"newlines kept", "a\nb\tc", "a\nb\tc"},
		{"already escaped doubles", "&amp;", "&amp;amp;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			w := NewWriter(&buf)
			if err := w.Text(tt.in); err != nil {
				t.Fatalf("failed to write text: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("failed to flush: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriter_Interleaved(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)

	_ = w.Literal("<name>")
	_ = w.Text("Smith & Co")
	_ = w.Literal("</name>")
	if err := w.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}

	want := "<name>Smith &amp; Co</name>"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
