// Package policy loads the policy corpus the Decide stage hands to the
// policy reasoner: the concatenated text of all policy documents, in an
// order that is deterministic per run.
package policy

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/faultlens/faultlens/pkg/inspect"
)

// Separator is inserted between policy documents so the reasoner can tell
// where one document ends and the next begins.
const Separator = "\n---\n"

// FS loads the corpus from all *.txt documents in a filesystem, sorted by
// name. Documents are re-read on every Load, so edits to the policy
// directory take effect on the next turn without a restart.
type FS struct {
	fsys fs.FS
}

// Compile-time interface check.
var _ inspect.PolicyCorpus = (*FS)(nil)

// NewFS creates a corpus over the given filesystem.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// NewDir creates a corpus over a directory on the OS filesystem.
func NewDir(dir string) *FS {
	return NewFS(os.DirFS(dir))
}

// Load implements inspect.PolicyCorpus.
func (f *FS) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	names, err := fs.Glob(f.fsys, "*.txt")
	if err != nil {
		return "", fmt.Errorf("list policy documents: %w", err)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		data, err := fs.ReadFile(f.fsys, name)
		if err != nil {
			return "", fmt.Errorf("read policy document %s: %w", name, err)
		}
		b.Write(data)
		b.WriteString(Separator)
	}

	return b.String(), nil
}

// Static is a fixed corpus string. Useful for tests and embedded policies.
type Static string

// Compile-time interface check.
var _ inspect.PolicyCorpus = Static("")

// Load implements inspect.PolicyCorpus.
func (s Static) Load(context.Context) (string, error) {
	return string(s), nil
}
