// Package recipe describes what the setup pipeline does: which environment files to create from
// their templates and which packages to build and link.
package recipe

import (
	_ "embed"
	"io/ioutil"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultSection is the env.json section generated values are written to.
const DefaultSection = "default"

// DefaultSecretLength is the length of generated secrets unless a generator overrides it.
const DefaultSecretLength = 60

// Generator kinds
const (
	KindSecret     = "secret"
	KindIdentifier = "identifier"
)

//go:embed default.yml
var defaultRecipe []byte

// Generator produces a value for a single key on first creation of an env file.
type Generator struct {
	Key    string
	Kind   string
	Prefix string `yaml:",omitempty"`
	Length int    `yaml:",omitempty"`
}

// EnvFile pairs a checked-in template with the config file created from it.
type EnvFile struct {
	Template string
	Target   string
	Section  string      `yaml:",omitempty"`
	Generate []Generator `yaml:",omitempty"`
}

// Step is an external command executed in a package directory.
type Step struct {
	Name     string
	Dir      string
	Cmd      string
	Env      map[string]string `yaml:",omitempty"`
	Stream   bool              `yaml:",omitempty"`
	LockFile string            `yaml:"lockFile,omitempty"`
	Hint     string            `yaml:",omitempty"`
}

// Recipe is the full description of a setup run.
type Recipe struct {
	EnvFiles []EnvFile `yaml:"envFiles"`
	Build    []Step
	Link     []Step
	Outro    string `yaml:",omitempty"`
}

// Default returns the built-in recipe.
func Default() (*Recipe, error) {
	r, err := Parse(defaultRecipe)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to parse built-in recipe")
	}

	return r, nil
}

// Load reads and validates the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s.", path)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s.", path)
	}

	return r, nil
}

// Parse decodes a YAML recipe, fills in defaults and validates it.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	err := yaml.Unmarshal(data, &r)
	if err != nil {
		return nil, err
	}

	for idx := range r.EnvFiles {
		env := &r.EnvFiles[idx]
		if env.Section == "" {
			env.Section = DefaultSection
		}

		for gIdx := range env.Generate {
			gen := &env.Generate[gIdx]
			if gen.Kind == KindSecret && gen.Length == 0 {
				gen.Length = DefaultSecretLength
			}
		}
	}

	err = r.Validate()
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func checkRelative(field, path string) error {
	if path == "" {
		return eris.Errorf("%s is missing", field)
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	if filepath.IsAbs(path) || clean == ".." || strings.HasPrefix(clean, "../") {
		return eris.Errorf("%s must be relative to the project root: %s", field, path)
	}

	return nil
}

// Validate checks that all paths are relative to the project root and that every generator is usable.
func (r *Recipe) Validate() error {
	targets := make(map[string]bool)
	for idx, env := range r.EnvFiles {
		if err := checkRelative("template", env.Template); err != nil {
			return eris.Wrapf(err, "envFiles #%d", idx)
		}

		if err := checkRelative("target", env.Target); err != nil {
			return eris.Wrapf(err, "envFiles #%d", idx)
		}

		if targets[env.Target] {
			return eris.Errorf("envFiles #%d: target %s is listed more than once", idx, env.Target)
		}
		targets[env.Target] = true

		for _, gen := range env.Generate {
			if gen.Key == "" {
				return eris.Errorf("envFiles #%d: generator without key", idx)
			}

			switch gen.Kind {
			case KindSecret:
				if gen.Length < 1 {
					return eris.Errorf("envFiles #%d: invalid length %d for %s", idx, gen.Length, gen.Key)
				}
			case KindIdentifier:
			default:
				return eris.Errorf("envFiles #%d: unknown generator kind %q for %s", idx, gen.Kind, gen.Key)
			}
		}
	}

	for _, steps := range [][]Step{r.Build, r.Link} {
		for _, step := range steps {
			if step.Name == "" {
				return eris.New("step without name")
			}

			if err := checkRelative("dir", step.Dir); err != nil {
				return eris.Wrapf(err, "step %s", step.Name)
			}

			if strings.TrimSpace(step.Cmd) == "" {
				return eris.Errorf("step %s has no cmd", step.Name)
			}
		}
	}

	return nil
}

var varMatcher = regexp.MustCompile(`\{([a-z]+)\}`)

// Expand replaces {name} placeholders in text with the matching entry from vars. Unknown placeholders
// are left untouched.
func Expand(text string, vars map[string]string) string {
	return varMatcher.ReplaceAllStringFunc(text, func(match string) string {
		value, ok := vars[match[1:len(match)-1]]
		if ok {
			return value
		}
		return match
	})
}
