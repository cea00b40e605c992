package template

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Directive marker families recognized by the scanner.
const (
	piStart    = "<?xsc"
	piEnd      = "?>"
	commentOpn = "<!--"
	commentCls = "-->"
	cdataOpn   = "<![CDATA["
	cdataCls   = "]]>"
)

// ParseFile reads and parses a template file.
func ParseFile(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Parse(path, string(content))
}

// Parse parses raw template text into a directive tree. It performs a
// single forward scan recognizing xsc processing instructions and ${expr}
// substitution markers; all other markup is captured verbatim as literal
// nodes. Mismatched or unterminated directives fail with a SyntaxError.
func Parse(file, input string) (*Template, error) {
	p := &parser{
		input: input,
		file:  file,
		line:  1,
		col:   1,
	}
	p.frames = []*frame{{}} // root frame

	if err := p.run(); err != nil {
		return nil, err
	}

	return &Template{File: file, Nodes: p.frames[0].body}, nil
}

// frame is one level of the open-directive stack. The root frame has a
// nil node; for/if frames collect their body until the matching end.
type frame struct {
	node Node // *ForNode or *IfNode, nil for root
	kind string
	body []Node
}

type parser struct {
	input  string
	file   string
	pos    int // current byte offset in input
	line   int // current line number (1-based)
	col    int // current column number (1-based)
	frames []*frame

	lit    strings.Builder // pending literal text
	litPos Position        // position of first pending literal byte
	litSet bool
}

func (p *parser) run() error {
	for p.pos < len(p.input) {
		switch {
		case p.matchString(piStart) && p.piBoundary():
			if err := p.scanDirective(); err != nil {
				return err
			}
		case p.matchString(commentOpn):
			// Pass-through XML comment, copied verbatim. Substitution
			// markers inside comments are not interpreted.
			if err := p.copyThrough(commentOpn, commentCls, "unclosed comment: missing '-->'"); err != nil {
				return err
			}
		case p.matchString(cdataOpn):
			if err := p.copyThrough(cdataOpn, cdataCls, "unclosed CDATA section: missing ']]>'"); err != nil {
				return err
			}
		case p.matchString("<!"):
			// DOCTYPE and other declarations pass through.
			if err := p.copyThrough("<!", ">", "unclosed declaration: missing '>'"); err != nil {
				return err
			}
		case p.matchString("<?"):
			// Foreign processing instruction, emitted verbatim.
			if err := p.copyThrough("<?", piEnd, "unclosed processing instruction: missing '?>'"); err != nil {
				return err
			}
		case p.peek() == '$':
			if err := p.scanDollar(); err != nil {
				return err
			}
		default:
			p.appendLiteralRune()
		}
	}
	p.flushLiteral()

	// Every for/if start marker needs its end marker at the same depth.
	if len(p.frames) > 1 {
		top := p.frames[len(p.frames)-1]
		return NewSyntaxErrorf(top.node.Pos(), "'%s' directive is never closed: missing '<?xsc end %s?>'", top.kind, top.kind)
	}
	return nil
}

// piBoundary reports whether the rune after "<?xsc" terminates the
// directive target, so that e.g. "<?xscript ...?>" is not mistaken for
// an xsc instruction.
func (p *parser) piBoundary() bool {
	rest := p.input[p.pos+len(piStart):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || strings.HasPrefix(rest, piEnd)
}

// scanDollar handles the '$' marker family: "$$" is an escaped dollar,
// "${expr}" a substitution, anything else a syntax error.
func (p *parser) scanDollar() error {
	pos := p.position()
	rest := p.input[p.pos:]
	switch {
	case strings.HasPrefix(rest, "$$"):
		p.ensureLiteral()
		p.lit.WriteByte('$')
		p.advanceN(2)
		return nil
	case strings.HasPrefix(rest, "${"):
		p.flushLiteral()
		p.advanceN(2)
		return p.scanSubstitution(pos)
	case len(rest) == 1:
		return NewSyntaxError(pos, "'$' at end of template must be followed by '$' or '{'")
	default:
		r, _ := utf8.DecodeRuneInString(rest[1:])
		return NewSyntaxErrorf(pos, "'$' must be followed by '$' or '{' but found %q", r)
	}
}

// scanSubstitution scans the expression of a ${...} marker. Braces nest
// so dict and set literals inside the expression are handled.
func (p *parser) scanSubstitution(start Position) error {
	exprStart := p.pos
	depth := 0
	for p.pos < len(p.input) {
		r := p.peek()
		if r == '}' {
			if depth == 0 {
				expr := strings.TrimSpace(p.input[exprStart:p.pos])
				p.advanceN(1)
				if expr == "" {
					return NewSyntaxError(start, "substitution must contain an expression")
				}
				node := &SubstNode{Expr: expr}
				node.pos = start
				p.append(node)
				return nil
			}
			depth--
		} else if r == '{' {
			depth++
		}
		p.advance()
	}
	return NewSyntaxError(start, "unclosed substitution: missing '}'")
}

// scanDirective scans one <?xsc ...?> instruction and dispatches on its
// command word.
func (p *parser) scanDirective() error {
	p.flushLiteral()
	start := p.position()
	p.advanceN(len(piStart))

	payloadStart := p.pos
	end := strings.Index(p.input[p.pos:], piEnd)
	if end < 0 {
		return NewSyntaxError(start, "unclosed xsc instruction: missing '?>'")
	}
	for p.pos < payloadStart+end {
		p.advance()
	}
	payload := p.input[payloadStart : payloadStart+end]
	p.advanceN(len(piEnd))

	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return NewSyntaxError(start, "xsc command must be specified")
	}

	words := strings.Fields(trimmed)
	switch words[0] {
	case "for":
		if len(words) != 2 {
			return NewSyntaxErrorf(start, "for directive must match '<?xsc for name?>' but is: %s", trimmed)
		}
		if !isIdentifier(words[1]) {
			return NewSyntaxErrorf(start, "data source name must be an identifier but is: %q", words[1])
		}
		node := &ForNode{Source: words[1]}
		node.pos = start
		p.push(&frame{node: node, kind: "for"})
		return nil

	case "if":
		cond := strings.TrimSpace(strings.TrimPrefix(trimmed, "if"))
		if cond == "" {
			return NewSyntaxErrorf(start, "if directive must match '<?xsc if condition?>' but is: %s", trimmed)
		}
		node := &IfNode{Cond: cond}
		node.pos = start
		p.push(&frame{node: node, kind: "if"})
		return nil

	case "end":
		if len(words) == 1 {
			return NewSyntaxError(start, "xsc command to end must be specified")
		}
		if len(words) > 2 {
			return NewSyntaxErrorf(start, "text after xsc command to end must be removed: %q", strings.Join(words[2:], " "))
		}
		return p.pop(start, words[1])

	case "import":
		if len(words) == 1 {
			return NewSyntaxError(start, "module to import must be specified")
		}
		if len(words) > 2 {
			return NewSyntaxErrorf(start, "text after module to import must be removed: %q", strings.Join(words[2:], " "))
		}
		if !isIdentifier(words[1]) {
			return NewSyntaxErrorf(start, "module name must be an identifier but is: %q", words[1])
		}
		node := &ImportNode{Module: words[1]}
		node.pos = start
		p.append(node)
		return nil

	case "python":
		// Keep the code verbatim after the command word so line structure
		// survives for error reporting; indentation is normalized at
		// execution time.
		idx := strings.Index(payload, "python")
		node := &CodeNode{Code: payload[idx+len("python"):]}
		node.pos = start
		p.append(node)
		return nil

	case "#":
		// Comment directive, discarded entirely.
		return nil

	default:
		// "# comment" without a space after '#' also counts as a comment.
		if strings.HasPrefix(words[0], "#") {
			return nil
		}
		return NewSyntaxErrorf(start, "unknown xsc command: '<?xsc %s ...?>'", words[0])
	}
}

// push opens a for/if directive frame.
func (p *parser) push(f *frame) {
	p.frames = append(p.frames, f)
}

// pop closes the innermost open directive, which must match kind.
func (p *parser) pop(pos Position, kind string) error {
	if kind != "for" && kind != "if" {
		return NewSyntaxErrorf(pos, "'end %s' is not a valid directive; expected 'end for' or 'end if'", kind)
	}
	if len(p.frames) == 1 {
		return NewSyntaxErrorf(pos, "'end %s' has no matching '%s' directive", kind, kind)
	}
	top := p.frames[len(p.frames)-1]
	if top.kind != kind {
		open := top.node.Pos()
		return NewSyntaxErrorf(pos, "'end %s' cannot close the '%s' directive opened at line %d", kind, top.kind, open.Line)
	}
	p.frames = p.frames[:len(p.frames)-1]

	switch n := top.node.(type) {
	case *ForNode:
		n.Body = top.body
	case *IfNode:
		n.Body = top.body
	}
	p.append(top.node)
	return nil
}

// append adds a node to the body of the innermost open frame.
func (p *parser) append(n Node) {
	top := p.frames[len(p.frames)-1]
	top.body = append(top.body, n)
}

// copyThrough copies a delimited region verbatim into the pending literal,
// including both delimiters.
func (p *parser) copyThrough(opn, cls, errMsg string) error {
	start := p.position()
	end := strings.Index(p.input[p.pos+len(opn):], cls)
	if end < 0 {
		return NewSyntaxError(start, errMsg)
	}
	total := len(opn) + end + len(cls)
	p.ensureLiteral()
	p.lit.WriteString(p.input[p.pos : p.pos+total])
	p.advanceN(total)
	return nil
}

// appendLiteralRune consumes one rune into the pending literal.
func (p *parser) appendLiteralRune() {
	p.ensureLiteral()
	_, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.lit.WriteString(p.input[p.pos : p.pos+size])
	p.advance()
}

// ensureLiteral records the start position of a literal run.
func (p *parser) ensureLiteral() {
	if !p.litSet {
		p.litPos = p.position()
		p.litSet = true
	}
}

// flushLiteral emits the pending literal text as a node, if any.
func (p *parser) flushLiteral() {
	if p.lit.Len() == 0 {
		p.lit.Reset()
		p.litSet = false
		return
	}
	node := &LiteralNode{Text: p.lit.String()}
	node.pos = p.litPos
	p.append(node)
	p.lit.Reset()
	p.litSet = false
}

// Scanner helpers, shared position tracking.

func (p *parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

// advance moves to the next rune, updating position tracking.
func (p *parser) advance() {
	if p.pos >= len(p.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// advanceN advances over n bytes of known-ASCII-free-or-counted content,
// keeping line/column tracking intact.
func (p *parser) advanceN(n int) {
	target := p.pos + n
	for p.pos < target {
		p.advance()
	}
}

func (p *parser) matchString(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *parser) position() Position {
	return Position{File: p.file, Line: p.line, Column: p.col}
}

// isIdentifier reports whether s is a valid binding name: a letter or
// underscore followed by letters, digits or underscores. Source and module
// names become scope bindings, so they must be identifiers.
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
