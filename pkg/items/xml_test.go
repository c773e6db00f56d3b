package items

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMenu = `<?xml version="1.0" encoding="UTF-8"?>
<mainMenu>
  <menuBar>
    <subMenu id="tools">
      <scriptItem id="com.test.thing">
        <label>Thing</label>
        <scriptCode><![CDATA[import hou
print("hi")]]></scriptCode>
        <context>
          <expression>len(kwargs) &gt; 0</expression>
        </context>
      </scriptItem>
      <scriptItem id="com.test.nocode">
        <label>No Code</label>
      </scriptItem>
    </subMenu>
  </menuBar>
</mainMenu>
`

const sampleShelf = `<?xml version="1.0" encoding="UTF-8"?>
<shelfDocument>
  <tool name="my_tool" label="My Tool" icon="MISC_python">
    <script scriptType="python"><![CDATA[print("tool")]]></script>
  </tool>
  <tool name="hscript_tool" label="H" icon="MISC_x">
    <script scriptType="hscript">message hello</script>
  </tool>
  <tool name="$HDA_DEFAULT_TOOL">
    <script scriptType="python"><![CDATA[print("default")]]></script>
  </tool>
</shelfDocument>
`

const samplePanel = `<?xml version="1.0" encoding="UTF-8"?>
<pythonPanelDocument>
  <interface name="panel" label="Panel" icon="MISC_python">
    <script><![CDATA[print("panel")]]></script>
  </interface>
</pythonPanelDocument>
`

func TestMenuFileProcess(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "MainMenuCommon.xml", sampleMenu)

	item := NewMenuFile(path, false, "")

	runner := &fakeRunner{tempDir: t.TempDir()}

	status, err := item.Process(runner)
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	// Both the script code and the context expression were materialized.
	require.Len(t, runner.processed, 2)
	assert.Equal(t, "com.test.thing.py", filepath.Base(runner.processed[0]))
	assert.Equal(t, "com.test.thing.context.py", filepath.Base(runner.processed[1]))
}

func TestMenuFileWriteBackPreservesCData(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "MainMenuCommon.xml", sampleMenu)

	item := NewMenuFile(path, true, "")

	runner := &fakeRunner{
		tempDir: t.TempDir(),
		process: func(filePath string, _ Item) (int, error) {
			data, err := os.ReadFile(filePath)
			require.NoError(t, err)

			return 0, os.WriteFile(filePath, append(data, "\nx = 1\n"...), 0o600)
		},
	}

	_, err := item.Process(runner)
	require.NoError(t, err)
	assert.True(t, item.ContentsChanged())

	written, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(written), "<![CDATA[import hou")
	assert.Contains(t, string(written), "x = 1")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(written))

	code := doc.Root().FindElement(".//scriptItem/scriptCode")
	require.NotNil(t, code)
	assert.True(t, strings.HasSuffix(code.Text(), "x = 1\n"))

	expression := doc.Root().FindElement(".//scriptItem/context/expression")
	require.NotNil(t, expression)
	assert.Contains(t, expression.Text(), "len(kwargs) > 0")
}

func TestMenuFileNoWriteBackLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "MainMenuCommon.xml", sampleMenu)

	item := NewMenuFile(path, false, "")

	runner := &fakeRunner{
		tempDir: t.TempDir(),
		process: func(filePath string, _ Item) (int, error) {
			return 0, os.WriteFile(filePath, []byte("replaced\n"), 0o600)
		},
	}

	_, err := item.Process(runner)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleMenu, string(written))
}

func TestShelfFileProcess(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Tools.shelf", sampleShelf)

	item := NewShelfFile(path, false, "", "com.test::thing/1.0")

	runner := &fakeRunner{tempDir: t.TempDir()}

	_, err := item.Process(runner)
	require.NoError(t, err)

	// The hscript tool is skipped and the default tool name is derived from
	// the owning operator.
	require.Len(t, runner.processed, 2)
	assert.Equal(t, "my_tool.py", filepath.Base(runner.processed[0]))
	assert.Equal(t, "com.test__thing_1.0_DEFAULT_TOOL.py", filepath.Base(runner.processed[1]))
}

func TestShelfFileDefaultToolWithoutOperator(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Tools.shelf", sampleShelf)

	item := NewShelfFile(path, false, "", "")

	runner := &fakeRunner{tempDir: t.TempDir()}

	_, err := item.Process(runner)
	require.NoError(t, err)

	require.Len(t, runner.processed, 2)
	assert.Equal(t, "$HDA_DEFAULT_TOOL.py", filepath.Base(runner.processed[1]))
}

func TestPythonPanelFileProcess(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "panel.pypanel", samplePanel)

	item := NewPythonPanelFile(path, false, "")

	runner := &fakeRunner{tempDir: t.TempDir()}

	_, err := item.Process(runner)
	require.NoError(t, err)

	require.Len(t, runner.processed, 1)
	assert.Equal(t, "panel.py", filepath.Base(runner.processed[0]))
}

func TestXMLItemBuiltins(t *testing.T) {
	item := NewMenuFile("/tmp/menu.xml", false, "")

	assert.Contains(t, item.IgnoredBuiltins(), "hou")
	assert.Contains(t, item.IgnoredBuiltins(), "kwargs")
	assert.Equal(t,
		[]string{"MenuFile", "XMLBase", "FileItem", "BaseFileItem", "BaseItem"},
		item.ConfigNames())
}
