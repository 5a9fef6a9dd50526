package staging

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Tree is an ephemeral filesystem tree populated with everything one output
// format needs before final packaging. Each tree is owned by exactly one
// format generator and is deleted unconditionally when the generator
// finishes, success or failure, so stale state never leaks into the next run.
type Tree struct {
	// Root is the temporary directory everything is staged under.
	Root string
	// Format names the output format this tree was created for.
	Format string
}

// stagingPrefix marks staging directories so a later clean pass can
// recognize leftovers from an externally terminated run.
const stagingPrefix = ".staging-"

// NewTree creates a staging tree for one format under the output root.
func NewTree(outputDir, format string) (*Tree, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	root, err := os.MkdirTemp(outputDir, stagingPrefix+format+"-")
	if err != nil {
		return nil, fmt.Errorf("create staging tree: %w", err)
	}

	return &Tree{Root: root, Format: format}, nil
}

// Remove deletes the whole tree. Safe to call multiple times.
func (t *Tree) Remove() {
	_ = os.RemoveAll(t.Root)
}

// Path joins path elements under the tree root.
func (t *Tree) Path(elems ...string) string {
	return filepath.Join(append([]string{t.Root}, elems...)...)
}

// WriteFile writes content to a relative path inside the tree, creating
// parent directories as needed.
func (t *Tree) WriteFile(rel string, content []byte, mode fs.FileMode) error {
	path := t.Path(rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, content, mode)
}

// CopyFile copies src into the tree at a relative path, preserving the
// provided mode.
func (t *Tree) CopyFile(src, rel string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	path := t.Path(rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	return err
}

// Require verifies that every listed relative path exists in the tree.
// A missing required file means the tree never became ready.
func (t *Tree) Require(rels ...string) error {
	var missing []string

	for _, rel := range rels {
		if _, err := os.Stat(t.Path(rel)); err != nil {
			missing = append(missing, rel)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("staging tree for %s incomplete, missing: %s", t.Format, strings.Join(missing, ", "))
	}

	return nil
}

// DiskUsageKiB returns the total size of regular files in the tree in
// kibibytes, rounded up. Debian control files record installed size this way.
func (t *Tree) DiskUsageKiB() (int64, error) {
	var total int64

	err := filepath.WalkDir(t.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.Type().IsRegular() {
			info, err := entry.Info()
			if err != nil {
				return err
			}

			total += info.Size()
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return (total + 1023) / 1024, nil
}

// RemoveStaleTrees deletes leftover staging directories under the output
// root. Externally terminated runs can leave partial trees behind; they are
// cleaned here rather than trusted to self-heal.
func RemoveStaleTrees(outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), stagingPrefix) {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return err
			}
		}
	}

	return nil
}
