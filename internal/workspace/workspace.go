// internal/workspace/workspace.go
package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"planmark/internal/history"
)

// Info identifies the workspace enclosing a plan document
type Info struct {
	// Root is the workspace root directory: the git worktree root when the
	// path sits inside a repository, otherwise the path itself.
	Root string
	// Project is the sanitized identity used to scope plan history.
	Project string
	// IsRepo reports whether a git repository was detected.
	IsRepo bool
}

// Detect resolves the workspace identity for a directory. Paths outside
// any git repository fall back to the directory's own name.
func Detect(path string) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, fmt.Errorf("resolve path: %w", err)
	}

	root, isRepo := gitRoot(abs)
	if !isRepo {
		root = abs
	}

	project := history.Sanitize(filepath.Base(root))
	if project == "" {
		project = "workspace"
	}

	return Info{Root: root, Project: project, IsRepo: isRepo}, nil
}

// gitRoot walks up from path looking for an enclosing git worktree
func gitRoot(path string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return worktree.Filesystem.Root(), true
}
