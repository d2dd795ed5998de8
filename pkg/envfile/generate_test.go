package envfile

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetUni/webiny-js/pkg/recipe"
)

func TestSecretLength(t *testing.T) {
	for i := 0; i < 50; i++ {
		secret, err := GenerateSecret(rand.Reader, 60)
		require.NoError(t, err)
		assert.Len(t, secret, 60)
	}
}

func TestSecretLongerThanDefault(t *testing.T) {
	secret, err := GenerateSecret(rand.Reader, 400)
	require.NoError(t, err)
	assert.Len(t, secret, 400)
}

func TestSecretIsBase64Prefix(t *testing.T) {
	zeros := bytes.NewReader(make([]byte, 128))
	secret, err := GenerateSecret(zeros, 60)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", secret)
}

func TestSecretShortRead(t *testing.T) {
	_, err := GenerateSecret(bytes.NewReader(make([]byte, 10)), 60)
	assert.Error(t, err)

	_, err = GenerateSecret(rand.Reader, 0)
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	pattern := regexp.MustCompile(`^webiny-js-dev-[a-f0-9]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := GenerateIdentifier(rand.Reader, "webiny-js-dev-")
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateKeepsOrder(t *testing.T) {
	values, err := Generate(rand.Reader, []recipe.Generator{
		{Key: "S3_BUCKET", Kind: recipe.KindIdentifier, Prefix: "webiny-js-dev-"},
		{Key: "JWT_SECRET", Kind: recipe.KindSecret, Length: 60},
	})
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "S3_BUCKET", values[0].Key)
	assert.Equal(t, "JWT_SECRET", values[1].Key)
	assert.Len(t, values[1].Value, 60)

	_, err = Generate(rand.Reader, []recipe.Generator{{Key: "X", Kind: "password"}})
	assert.Error(t, err)
}
