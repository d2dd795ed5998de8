package envfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetUni/webiny-js/pkg/recipe"
)

var apiEnv = recipe.EnvFile{
	Template: "examples/api/example.env.json",
	Target:   "examples/api/.env.json",
	Section:  recipe.DefaultSection,
	Generate: []recipe.Generator{
		{Key: "S3_BUCKET", Kind: recipe.KindIdentifier, Prefix: "webiny-js-dev-"},
		{Key: "JWT_SECRET", Kind: recipe.KindSecret, Length: 60},
	},
}

var siteEnv = recipe.EnvFile{
	Template: "examples/apps/site/example.env.json",
	Target:   "examples/apps/site/.env.json",
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

func TestMaterializeGeneratesValues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, apiEnv.Template, `{"default":{}}`)

	m := NewMaterializer(root, false)
	outcome, err := m.Materialize(context.Background(), apiEnv)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)

	doc, err := Parse([]byte(readFile(t, root, apiEnv.Target)))
	require.NoError(t, err)

	keys, err := doc.Keys("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"S3_BUCKET", "JWT_SECRET"}, keys)

	bucket, ok := doc.Get("default", "S3_BUCKET")
	require.True(t, ok)
	assert.Regexp(t, `^webiny-js-dev-[a-f0-9]+$`, bucket)

	secret, ok := doc.Get("default", "JWT_SECRET")
	require.True(t, ok)
	assert.Len(t, secret, 60)

	// the template stays untouched
	assert.Equal(t, `{"default":{}}`, readFile(t, root, apiEnv.Template))
}

func TestMaterializeCopiesVerbatim(t *testing.T) {
	root := t.TempDir()
	template := "{\n  // not reformatted\n  \"default\": {\"API_URL\": \"http://localhost:9000\"}\n}\n"
	writeFile(t, root, siteEnv.Template, template)

	outcome, err := NewMaterializer(root, false).Materialize(context.Background(), siteEnv)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, template, readFile(t, root, siteEnv.Target))

	entries, err := os.ReadDir(filepath.Dir(filepath.Join(root, siteEnv.Target)))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestMaterializeSkipsExisting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, apiEnv.Template, `{"default":{}}`)
	writeFile(t, root, apiEnv.Target, "arbitrary content, not even JSON")

	outcome, err := NewMaterializer(root, false).Materialize(context.Background(), apiEnv)
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
	assert.Equal(t, "arbitrary content, not even JSON", readFile(t, root, apiEnv.Target))
}

func TestMaterializeSkipsWithoutTemplate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, siteEnv.Target, "{}")

	outcome, err := NewMaterializer(root, false).Materialize(context.Background(), siteEnv)
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
}

func TestMaterializeMissingTemplate(t *testing.T) {
	root := t.TempDir()

	_, err := NewMaterializer(root, false).Materialize(context.Background(), siteEnv)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, siteEnv.Target))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMaterializeInvalidTemplate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, apiEnv.Template, `not json`)

	_, err := NewMaterializer(root, false).Materialize(context.Background(), apiEnv)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, apiEnv.Target))
	assert.True(t, os.IsNotExist(statErr), "nothing is written if the template can't be parsed")
}

func TestMaterializeDryRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, apiEnv.Template, `{"default":{}}`)

	outcome, err := NewMaterializer(root, true).Materialize(context.Background(), apiEnv)
	require.NoError(t, err)
	assert.Equal(t, Planned, outcome)
	_, statErr := os.Stat(filepath.Join(root, apiEnv.Target))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMaterializeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMaterializer(t.TempDir(), false).Materialize(ctx, siteEnv)
	assert.ErrorIs(t, err, context.Canceled)
}
