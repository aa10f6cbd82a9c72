package geneset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenviz/internal"
	"screenviz/internal/errors"
)

const toyGMT = "# toy library\n" +
	"ras signalling\thttp://example.org\tKRAS\tNRAS\tHRAS,1.0\n" +
	"\n" +
	"cell cycle\t\tCDK1\tCDK2\t\n"

func TestParseGMT(t *testing.T) {
	lib, err := ParseGMT(strings.NewReader(toyGMT), "toy")
	require.NoError(t, err)
	assert.Equal(t, "toy", lib.Name)
	require.Len(t, lib.Sets, 2)
	assert.Equal(t, "ras signalling", lib.Sets[0].Term)
	assert.Equal(t, []string{"KRAS", "NRAS", "HRAS"}, lib.Sets[0].Genes)
	assert.Equal(t, []string{"CDK1", "CDK2"}, lib.Sets[1].Genes)
}

func TestParseGMT_Errors(t *testing.T) {
	_, err := ParseGMT(strings.NewReader("term\tdesc\n"), "bad")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = ParseGMT(strings.NewReader("# only comments\n"), "empty")
	assert.Error(t, err)
}

func TestStore_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BP.gmt"), []byte(toyGMT), 0o644))
	store := NewStore(dir, internal.NewNopLogger())

	lib, err := store.Load("BP")
	require.NoError(t, err)
	assert.Equal(t, "BP", lib.Name)

	lib, err = store.Load(filepath.Join(dir, "BP.gmt"))
	require.NoError(t, err)
	assert.Equal(t, "BP", lib.Name)

	_, err = store.Load("MF")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestLibraryName(t *testing.T) {
	assert.Equal(t, "KEGG_2021", LibraryName("/data/KEGG_2021.gmt"))
	assert.Equal(t, "BP", LibraryName("BP"))
}
