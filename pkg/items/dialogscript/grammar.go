package dialogscript

import (
	"fmt"
	"regexp"
	"strings"
)

// The DialogScript format is only understood far enough to locate parameter
// blocks and the tagged sub-structures which can carry Python code. Everything
// else in a block is passed through verbatim.

var (
	parmKeywordExpr = regexp.MustCompile(`\bparm\b`)

	nameExpr = regexp.MustCompile(`\bname\s+"([^"]*)"`)

	callbackLanguageExpr = regexp.MustCompile(
		`\bparmtag\s*\{\s*"script_callback_language"\s+"([^"]*)"\s*\}`)

	// The quoted script may span lines; the capture includes the quotes so the
	// span convention in dsFileOffset applies uniformly.
	callbackScriptExpr = regexp.MustCompile(
		`\bparmtag\s*\{\s*"script_callback"\s+("(?:[^"\\]|\\[\s\S])*")\s*\}`)

	defaultOpenExpr = regexp.MustCompile(`\bdefault\s*\{`)

	defaultTypedExpr = regexp.MustCompile(
		`\[\s*("(?:[^"\\]|\\[\s\S])*")\s+([A-Za-z-]+)\s*\]`)

	menuOpenExpr = regexp.MustCompile(`\bmenu\s*\{`)

	// Menu entries are single-line quoted strings wrapped in brackets. Group 1
	// is the bracketed token, group 2 the quoted line.
	menuEntryExpr = regexp.MustCompile(
		`^\s*(\[\s*("(?:[^"\\\r\n]|\\.)*")\s*\])`)

	menuTailExpr = regexp.MustCompile(`^\s*language\s+python\s*$`)
)

// Span is a half-open character range within a parameter block.
type Span struct {
	Start int
	End   int
}

// parmBlock is one brace-delimited parameter definition found in the container.
type parmBlock struct {
	text  string
	start int
}

// scanParmBlocks finds every parm block in the container text. Block text runs
// from the parm keyword through its matching closing brace.
func scanParmBlocks(text string) []parmBlock {
	var blocks []parmBlock

	pos := 0

	for pos < len(text) {
		loc := parmKeywordExpr.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		start := pos + loc[0]
		cursor := pos + loc[1]

		for cursor < len(text) && isSpace(text[cursor]) {
			cursor++
		}

		if cursor >= len(text) || text[cursor] != '{' {
			pos += loc[1]
			continue
		}

		end, ok := matchBraces(text, cursor)
		if !ok {
			pos += loc[1]
			continue
		}

		blocks = append(blocks, parmBlock{text: text[start:end], start: start})
		pos = end
	}

	return blocks
}

// matchBraces finds the end of the balanced brace group opening at open.
// Braces inside double-quoted strings do not count.
func matchBraces(s string, open int) (int, bool) {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '"':
			i = skipQuoted(s, i)
		}
	}

	return 0, false
}

// skipQuoted returns the index of the quote closing the string opening at
// open, honoring backslash escapes. An unterminated string consumes the rest
// of the input.
func skipQuoted(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}

	return len(s) - 1
}

// parmName returns the parameter name from a parm block.
func parmName(parm string) (string, error) {
	match := nameExpr.FindStringSubmatch(parm)
	if match == nil {
		return "", fmt.Errorf("parameter block has no name token")
	}

	return match[1], nil
}

// callbackLanguage returns the parameter's declared callback script language.
// The second return is false when the block declares no callback language.
func callbackLanguage(parm string) (string, bool) {
	match := callbackLanguageExpr.FindStringSubmatch(parm)
	if match == nil {
		return "", false
	}

	return match[1], true
}

// scriptCallback returns the parameter's callback script and its span. The
// span includes the enclosing quotes; dsFileOffset shrinks it. A parameter has
// at most one callback so only the first match is used.
func scriptCallback(parm string) (string, Span, bool) {
	idx := callbackScriptExpr.FindStringSubmatchIndex(parm)
	if idx == nil {
		return "", Span{}, false
	}

	quoted := parm[idx[2]:idx[3]]

	return unescapeQuoted(quoted[1 : len(quoted)-1]), Span{Start: idx[2], End: idx[3]}, true
}

// pythonExpression is one Python default expression with its quote-inclusive span.
type pythonExpression struct {
	code string
	span Span
}

// defaultPythonExpressions returns every Python-tagged default expression in
// the block. A parameter tuple may have several components, each with its own
// expression.
func defaultPythonExpressions(parm string) []pythonExpression {
	var expressions []pythonExpression

	for _, open := range defaultOpenExpr.FindAllStringIndex(parm, -1) {
		end, ok := matchBraces(parm, open[1]-1)
		if !ok {
			continue
		}

		base := open[1]
		region := parm[base : end-1]

		for _, idx := range defaultTypedExpr.FindAllStringSubmatchIndex(region, -1) {
			lang := region[idx[4]:idx[5]]
			if lang != "python" {
				continue
			}

			quoted := region[idx[2]:idx[3]]

			expressions = append(expressions, pythonExpression{
				code: unescapeQuoted(quoted[1 : len(quoted)-1]),
				span: Span{Start: base + idx[2], End: base + idx[3]},
			})
		}
	}

	return expressions
}

// MenuScriptResult holds an extracted Python menu script.
//
// Span covers the bracketed lines structurally, from the first opening bracket
// through the newline terminating the last entry, so the inclusive offset
// convention applies. Indent and UsesTabs record the indentation preceding the
// block so re-encoding can reproduce it.
type MenuScriptResult struct {
	Script   string
	Span     Span
	Indent   int
	UsesTabs bool
}

// pythonMenuScript returns the parameter's Python menu script data, if any.
// Only one menu script is possible per parameter; the first structurally valid
// menu block tagged "language python" is used.
func pythonMenuScript(parm string) (*MenuScriptResult, bool) {
	for _, open := range menuOpenExpr.FindAllStringIndex(parm, -1) {
		end, ok := matchBraces(parm, open[1]-1)
		if !ok {
			continue
		}

		base := open[1]
		region := parm[base : end-1]

		var lines []string
		spanStart := -1
		spanEnd := -1
		pos := 0

		for {
			idx := menuEntryExpr.FindStringSubmatchIndex(region[pos:])
			if idx == nil {
				break
			}

			if spanStart < 0 {
				spanStart = base + pos + idx[2]
			}

			quoted := region[pos+idx[4] : pos+idx[5]]
			lines = append(lines, unescapeQuoted(quoted[1:len(quoted)-1]))

			spanEnd = base + pos + idx[3]
			pos += idx[1]
		}

		if len(lines) == 0 || !menuTailExpr.MatchString(region[pos:]) {
			continue
		}

		spanEnd = discardNewlines(parm, spanEnd)

		indent, usesTabs := leadingIndent(parm, spanStart)

		return &MenuScriptResult{
			Script:   strings.Join(lines, "\n"),
			Span:     Span{Start: spanStart, End: spanEnd},
			Indent:   indent,
			UsesTabs: usesTabs,
		}, true
	}

	return nil, false
}

// dsFileOffset converts a block-relative span to container-relative offsets.
//
// When inclusive is false the span includes the enclosing quote characters and
// shrinks by one on each side; when true the span was computed from structural
// brackets and is used as-is.
func dsFileOffset(parmStart int, span Span, inclusive bool) (int, int) {
	extra := 1
	if inclusive {
		extra = 0
	}

	return parmStart + span.Start + extra, parmStart + span.End - extra
}

// discardNewlines advances start past any newline characters so they fall
// inside the replaced span and are re-emitted by re-encoding rather than
// duplicated.
func discardNewlines(parm string, start int) int {
	pos := start

	for pos < len(parm) {
		if parm[pos] != '\r' && parm[pos] != '\n' {
			break
		}

		pos++
	}

	return pos
}

// leadingIndent counts the run of indentation characters immediately before
// start, and whether any of them were tabs.
func leadingIndent(parm string, start int) (int, bool) {
	indent := 0
	usesTabs := false

	for i := start - 1; i > 0; i-- {
		switch parm[i] {
		case ' ':
			indent++
		case '\t':
			indent++
			usesTabs = true
		default:
			return indent, usesTabs
		}
	}

	return indent, usesTabs
}

// escapeSingleLine escapes characters which cannot appear in a single-line
// quoted string context.
func escapeSingleLine(contents string) string {
	contents = strings.ReplaceAll(contents, "\r", `\r`)
	contents = strings.ReplaceAll(contents, "\n", `\n`)
	contents = strings.ReplaceAll(contents, `"`, `\"`)

	return contents
}

// unescapeQuoted decodes text extracted from a quoted string. Whitespace
// escape sequences become their real characters, the inverse of
// escapeSingleLine; any other escaped character just loses the backslash.
func unescapeQuoted(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++

			switch s[i] {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case 'f':
				builder.WriteByte('\f')
			default:
				builder.WriteByte(s[i])
			}

			continue
		}

		builder.WriteByte(s[i])
	}

	return builder.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
