package qmldiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChangeFilesDiscoversSortedQMD(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.qmd"), []byte("AFFECT f.qml\nREMOVE width\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.qmd"), []byte("AFFECT g.qml\nREMOVE height\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not a diff"), 0o644))

	e := New()
	n, err := e.BuildChangeFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, e.IsModified("f.qml"))
	assert.True(t, e.IsModified("g.qml"))
	assert.False(t, e.IsModified("h.qml"))
}

func TestProcessFileReturnsNotAppliedWhenNoChangeMatches(t *testing.T) {
	e := New()
	require.True(t, e.AddExternalDiff("AFFECT other.qml\nREMOVE width\n", "x.qmd"))

	out, applied, err := e.ProcessFile("f.qml", "Root {\n    width: 10\n}\n")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, out)
}

func TestProcessFileAppliesMatchingChange(t *testing.T) {
	e := New()
	require.True(t, e.AddExternalDiff("AFFECT f.qml\nREMOVE width\n", "x.qmd"))

	out, applied, err := e.ProcessFile("f.qml", "Root {\n    width: 10\n    height: 20\n}\n")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NotContains(t, out, "width")
	assert.Contains(t, out, "height: 20")
}

func TestAddExternalDiffFailsAfterPostInit(t *testing.T) {
	e := New()
	require.True(t, e.AddExternalDiff("AFFECT f.qml\nREMOVE width\n", "x.qmd"))
	_, _, err := e.ProcessFile("f.qml", "Root {\n    width: 10\n}\n")
	require.NoError(t, err)

	assert.False(t, e.AddExternalDiff("AFFECT f.qml\nREMOVE height\n", "y.qmd"))
}

func TestDisableSlotsWhileProcessingLeavesSlotUnresolved(t *testing.T) {
	e := New()
	e.DisableSlotsWhileProcessing()
	require.True(t, e.AddExternalDiff(
		"AFFECT f.qml\n"+
			"SLOT s\n"+
			"INSERT { a: 1 }\n"+
			"END SLOT\n"+
			"LOCATE AFTER ALL\n"+
			"INSERT SLOT s\n", "x.qmd"))

	_, _, err := e.ProcessFile("f.qml", "Root {\n}\n")
	assert.Error(t, err)
}

func TestHashtabBuildModeMarksEveryFileModifiedAndCollectsIdentifiers(t *testing.T) {
	e := New()
	e.EnableHashtabBuild(filepath.Join(t.TempDir(), "hashtab"))
	assert.True(t, e.IsModified("anything.qml"))

	out, applied, err := e.ProcessFile("f.qml", "Root {\n    width: 10\n}\n")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, out)

	var buf countingWriter
	require.NoError(t, e.SaveHashtab(&buf))
	assert.True(t, buf.n > 0)
}

func TestHashtabBuildModeReusesCacheOnUnchangedContent(t *testing.T) {
	e := New()
	e.EnableHashtabBuild(filepath.Join(t.TempDir(), "hashtab"))

	src := "Root {\n    width: 10\n}\n"
	_, _, err := e.ProcessFile("f.qml", src)
	require.NoError(t, err)

	var before countingWriter
	require.NoError(t, e.SaveHashtab(&before))

	_, _, err = e.ProcessFile("f.qml", src)
	require.NoError(t, err)

	var after countingWriter
	require.NoError(t, e.SaveHashtab(&after))
	assert.Equal(t, before.n, after.n)
}

type countingWriter struct{ n int }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}
