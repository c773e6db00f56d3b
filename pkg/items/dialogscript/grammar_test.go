package dialogscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleParm = `parm {
        name    "thing"
        label   "Thing"
        type    integer
        default { [ "hou.frame()" python ] }
        menu {
            [ "import os" ]
            [ "return ['a', 'a']" ]
            language python
        }
        range   { 0 10 }
        parmtag { "script_callback" "print('hi')" }
        parmtag { "script_callback_language" "python" }
    }`

func TestScanParmBlocks(t *testing.T) {
	text := "    " + sampleParm + "\n    parm {\n        name \"other\"\n        type float\n    }\n"

	blocks := scanParmBlocks(text)
	require.Len(t, blocks, 2)

	assert.Equal(t, 4, blocks[0].start)
	assert.True(t, strings.HasPrefix(blocks[0].text, "parm {"))
	assert.True(t, strings.HasSuffix(blocks[0].text, "}"))

	name, err := parmName(blocks[1].text)
	require.NoError(t, err)
	assert.Equal(t, "other", name)
}

func TestScanParmBlocksIgnoresBracesInStrings(t *testing.T) {
	text := `parm {
        name    "braces"
        default { [ "d = {'a': 1}" python ] }
    }`

	blocks := scanParmBlocks(text)
	require.Len(t, blocks, 1)
	assert.True(t, strings.HasSuffix(blocks[0].text, "}"))
	assert.Contains(t, blocks[0].text, "{'a': 1}")
}

func TestScanParmBlocksSkipsGroupKeyword(t *testing.T) {
	// The parm keyword must be standalone, not part of another word.
	text := `groupparm {
    }
    parm {
        name "real"
    }`

	blocks := scanParmBlocks(text)
	require.Len(t, blocks, 1)

	name, err := parmName(blocks[0].text)
	require.NoError(t, err)
	assert.Equal(t, "real", name)
}

func TestParmNameMissing(t *testing.T) {
	_, err := parmName(`parm { type integer }`)
	assert.Error(t, err)
}

func TestCallbackLanguage(t *testing.T) {
	language, ok := callbackLanguage(sampleParm)
	require.True(t, ok)
	assert.Equal(t, "python", language)

	_, ok = callbackLanguage(`parm { name "x" }`)
	assert.False(t, ok)
}

func TestScriptCallback(t *testing.T) {
	code, span, found := scriptCallback(sampleParm)
	require.True(t, found)

	assert.Equal(t, "print('hi')", code)

	// The span is quote inclusive.
	assert.Equal(t, `"print('hi')"`, sampleParm[span.Start:span.End])
}

func TestScriptCallbackEscaped(t *testing.T) {
	parm := `parm {
        name "escaped"
        parmtag { "script_callback" "print(\"hi\")" }
    }`

	code, span, found := scriptCallback(parm)
	require.True(t, found)

	assert.Equal(t, `print("hi")`, code)
	assert.Equal(t, `"print(\"hi\")"`, parm[span.Start:span.End])
}

func TestScriptCallbackMultiLine(t *testing.T) {
	parm := `parm {
        name "multi"
        parmtag { "script_callback" "import os\nprint('x')" }
    }`

	code, span, found := scriptCallback(parm)
	require.True(t, found)

	// Escaped whitespace decodes to the real characters.
	assert.Equal(t, "import os\nprint('x')", code)
	assert.Equal(t, `"import os\nprint('x')"`, parm[span.Start:span.End])
}

func TestDefaultPythonExpressionMultiLine(t *testing.T) {
	parm := `parm {
        name "multi"
        default { [ "a = 1\nfloat(a)" python ] }
    }`

	expressions := defaultPythonExpressions(parm)
	require.Len(t, expressions, 1)
	assert.Equal(t, "a = 1\nfloat(a)", expressions[0].code)
}

func TestDefaultPythonExpressions(t *testing.T) {
	parm := `parm {
        name "tuple"
        default { [ "hou.frame()" python ] [ "0" hscript ] [ "len('x')" python ] }
    }`

	expressions := defaultPythonExpressions(parm)
	require.Len(t, expressions, 2)

	assert.Equal(t, "hou.frame()", expressions[0].code)
	assert.Equal(t, "len('x')", expressions[1].code)

	// Spans are block relative and quote inclusive.
	assert.Equal(t, `"hou.frame()"`, parm[expressions[0].span.Start:expressions[0].span.End])
	assert.Equal(t, `"len('x')"`, parm[expressions[1].span.Start:expressions[1].span.End])
}

func TestDefaultNonPythonIgnored(t *testing.T) {
	parm := `parm {
        name "plain"
        default { [ "0" hscript ] }
    }`

	assert.Empty(t, defaultPythonExpressions(parm))
}

func TestPythonMenuScript(t *testing.T) {
	result, ok := pythonMenuScript(sampleParm)
	require.True(t, ok)

	assert.Equal(t, "import os\nreturn ['a', 'a']", result.Script)
	assert.Equal(t, 12, result.Indent)
	assert.False(t, result.UsesTabs)

	region := sampleParm[result.Span.Start:result.Span.End]
	assert.True(t, strings.HasPrefix(region, `[ "import os" ]`))

	// Trailing newlines are part of the span so re-encoding replaces them.
	assert.True(t, strings.HasSuffix(region, "\n"))
	assert.NotContains(t, region, "language")
}

func TestPythonMenuScriptRequiresPythonTail(t *testing.T) {
	parm := `parm {
        name "tokens"
        menu {
            [ "a" ]
            [ "b" ]
        }
    }`

	_, ok := pythonMenuScript(parm)
	assert.False(t, ok)
}

func TestPythonMenuScriptTabIndent(t *testing.T) {
	parm := "parm {\n\tname \"tabs\"\n\tmenu {\n\t\t[ \"return []\" ]\n\t\tlanguage python\n\t}\n}"

	result, ok := pythonMenuScript(parm)
	require.True(t, ok)

	assert.Equal(t, 2, result.Indent)
	assert.True(t, result.UsesTabs)
}

func TestDSFileOffset(t *testing.T) {
	start, end := dsFileOffset(0, Span{Start: 3, End: 10}, false)
	assert.Equal(t, 4, start)
	assert.Equal(t, 9, end)

	start, end = dsFileOffset(0, Span{Start: 3, End: 10}, true)
	assert.Equal(t, 3, start)
	assert.Equal(t, 10, end)

	start, end = dsFileOffset(100, Span{Start: 3, End: 10}, false)
	assert.Equal(t, 104, start)
	assert.Equal(t, 109, end)
}

func TestDiscardNewlines(t *testing.T) {
	assert.Equal(t, 3, discardNewlines("ab\ncd", 2))
	assert.Equal(t, 4, discardNewlines("ab\r\ncd", 2))
	assert.Equal(t, 2, discardNewlines("abcd", 2))
	assert.Equal(t, 4, discardNewlines("ab\n\n", 2))
}

func TestEscapeSingleLine(t *testing.T) {
	assert.Equal(t, `foo\rbar\n\"thing\"`, escapeSingleLine("foo\rbar\n\"thing\""))
	assert.Equal(t, "plain", escapeSingleLine("plain"))
}

func TestUnescapeQuoted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no escapes", "plain", "plain"},
		{"quote", `say \"hi\"`, `say "hi"`},
		{"backslash", `a\\b`, `a\b`},
		{"newline", `a\nb`, "a\nb"},
		{"tab", `a\tb`, "a\tb"},
		{"carriage return", `a\rb`, "a\rb"},
		{"form feed", `a\fb`, "a\fb"},
		{"other character", `a\qb`, "aqb"},
		{"trailing backslash", `a\`, `a\`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, unescapeQuoted(test.in))
		})
	}
}

func TestLeadingIndent(t *testing.T) {
	indent, usesTabs := leadingIndent("abc\n    [", 8)
	assert.Equal(t, 4, indent)
	assert.False(t, usesTabs)

	indent, usesTabs = leadingIndent("abc\n\t\t[", 6)
	assert.Equal(t, 2, indent)
	assert.True(t, usesTabs)
}
