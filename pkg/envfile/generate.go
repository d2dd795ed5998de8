package envfile

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/JetUni/webiny-js/pkg/recipe"
)

const secretBytes = 128

// GenerateSecret reads random bytes from rand and returns the first length characters of their
// base64 encoding. At least 128 bytes are read.
func GenerateSecret(rand io.Reader, length int) (string, error) {
	if length < 1 {
		return "", eris.Errorf("invalid secret length %d", length)
	}

	size := secretBytes
	if needed := base64.StdEncoding.DecodedLen(length) + 3; needed > size {
		size = needed
	}

	buf := make([]byte, size)
	_, err := io.ReadFull(rand, buf)
	if err != nil {
		return "", eris.Wrap(err, "Failed to read random bytes")
	}

	return base64.StdEncoding.EncodeToString(buf)[:length], nil
}

// GenerateIdentifier returns prefix followed by the first segment of a random UUID (8 hex characters).
func GenerateIdentifier(rand io.Reader, prefix string) (string, error) {
	id, err := uuid.NewRandomFromReader(rand)
	if err != nil {
		return "", eris.Wrap(err, "Failed to generate UUID")
	}

	return prefix + strings.SplitN(id.String(), "-", 2)[0], nil
}

// Generate runs every generator in order.
func Generate(rand io.Reader, generators []recipe.Generator) ([]Value, error) {
	values := make([]Value, 0, len(generators))
	for _, gen := range generators {
		var (
			value string
			err   error
		)

		switch gen.Kind {
		case recipe.KindSecret:
			value, err = GenerateSecret(rand, gen.Length)
		case recipe.KindIdentifier:
			value, err = GenerateIdentifier(rand, gen.Prefix)
		default:
			err = eris.Errorf("unknown generator kind %q", gen.Kind)
		}

		if err != nil {
			return nil, eris.Wrapf(err, "Failed to generate %s", gen.Key)
		}

		values = append(values, Value{Key: gen.Key, Value: value})
	}

	return values, nil
}
