package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	files, err := Files("testdata/blog")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "blog", "author.graphql"),
		filepath.Join("testdata", "blog", "book.graphqls"),
	}, files)

	files, err = Files("testdata/blog/*.graphql", "testdata/blog/author.graphql")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "blog", "author.graphql")}, files, "deduplicated")

	files, err = Files("testdata/blog/*.nothing")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = Files("testdata/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSchema(t *testing.T) {
	doc, err := Schema("testdata/blog")
	require.NoError(t, err)
	require.NotNil(t, doc.Definitions.ForName("Author"))
	require.NotNil(t, doc.Definitions.ForName("Book"))

	_, err = Schema("testdata/blog/*.nothing")
	require.ErrorIs(t, err, ErrNoSources)

	_, err = Schema("testdata/broken")
	require.Error(t, err)
}

func TestIsSchemaFile(t *testing.T) {
	assert.True(t, IsSchemaFile("a/b.graphql"))
	assert.True(t, IsSchemaFile("b.gql"))
	assert.True(t, IsSchemaFile("b.graphqls"))
	assert.False(t, IsSchemaFile("README.md"))
}
