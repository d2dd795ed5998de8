// Package envfile creates environment config files from their checked-in templates and fills in
// generated values such as secrets on first creation.
package envfile

import (
	"context"
	"crypto/rand"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"

	"github.com/JetUni/webiny-js/pkg/recipe"
)

// Outcome describes what Materialize did with a target.
type Outcome int

const (
	// Created means the target was written.
	Created Outcome = iota
	// Skipped means the target already existed and was left alone.
	Skipped
	// Planned means the target would have been created but DryRun was set.
	Planned
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Skipped:
		return "skipped"
	case Planned:
		return "planned"
	}
	return "unknown"
}

// Materializer creates env files below Root.
type Materializer struct {
	Root   string
	Rand   io.Reader
	DryRun bool
}

// NewMaterializer returns a Materializer using crypto/rand.
func NewMaterializer(root string, dryRun bool) *Materializer {
	return &Materializer{
		Root:   root,
		Rand:   rand.Reader,
		DryRun: dryRun,
	}
}

// Render produces the content of a new target: the template verbatim, or, if the env file has
// generators, the template with the generated values merged into its section.
func (m *Materializer) Render(env recipe.EnvFile, template []byte) ([]byte, error) {
	if len(env.Generate) == 0 {
		return template, nil
	}

	doc, err := Parse(template)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", env.Template)
	}

	values, err := Generate(m.Rand, env.Generate)
	if err != nil {
		return nil, err
	}

	section := env.Section
	if section == "" {
		section = recipe.DefaultSection
	}

	doc, err = Merge(doc, section, values)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to update %s", env.Target)
	}

	return doc.Encode()
}

// Materialize creates env.Target from env.Template unless the target already exists. Any error is
// fatal for the run: a missing template, an unparsable template or a failed write.
func (m *Materializer) Materialize(ctx context.Context, env recipe.EnvFile) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Skipped, err
	}

	target := filepath.Join(m.Root, env.Target)
	// Lstat so that a dangling symlink counts as existing
	_, err := os.Lstat(target)
	if err == nil {
		return Skipped, nil
	}
	if !eris.Is(err, os.ErrNotExist) {
		return Skipped, eris.Wrapf(err, "Failed to check %s", env.Target)
	}

	templatePath := filepath.Join(m.Root, env.Template)
	info, err := os.Stat(templatePath)
	if err != nil {
		return Skipped, eris.Wrapf(err, "Failed to read template %s", env.Template)
	}

	template, err := ioutil.ReadFile(templatePath)
	if err != nil {
		return Skipped, eris.Wrapf(err, "Failed to read template %s", env.Template)
	}

	content, err := m.Render(env, template)
	if err != nil {
		return Skipped, err
	}

	if m.DryRun {
		return Planned, nil
	}

	err = writeFileAtomic(target, content, info.Mode().Perm())
	if err != nil {
		return Skipped, eris.Wrapf(err, "Failed to write %s", env.Target)
	}

	return Created, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+nanoid.New()+".tmp")
	err := ioutil.WriteFile(tmpPath, data, perm)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}
