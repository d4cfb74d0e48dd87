// Package gitops stages and commits regenerated documents so sync runs can
// land directly in the docs repository history.
package gitops

import (
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/countrystatecity/docsync/internal/errors"
)

// Author identifies the committer used for sync commits.
type Author struct {
	Name  string
	Email string
}

// CommitPaths stages the given files and commits them in the repository
// containing startDir. It returns the commit hash, or an empty string when
// none of the paths had changes to commit.
func CommitPaths(startDir string, paths []string, author Author, message string) (string, error) {
	repo, err := git.PlainOpenWithOptions(startDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.GitError("open repository", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.GitError("open worktree", err)
	}
	root := wt.Filesystem.Root()

	staged := 0
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", errors.GitError("resolve path", err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return "", errors.GitError("resolve path", err)
		}
		if _, err := wt.Add(rel); err != nil {
			return "", errors.GitError(fmt.Sprintf("stage %s", rel), err)
		}
		staged++
	}
	if staged == 0 {
		return "", nil
	}

	status, err := wt.Status()
	if err != nil {
		return "", errors.GitError("status", err)
	}
	if status.IsClean() {
		return "", nil
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", errors.GitError("commit", err)
	}

	return hash.String(), nil
}
