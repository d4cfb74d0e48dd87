package gitops

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func TestCommitPaths_CommitsChangedFile(t *testing.T) {
	dir := initRepo(t)
	docPath := filepath.Join(dir, "changelog.mdx")
	require.NoError(t, os.WriteFile(docPath, []byte("---\ntitle: Changelog\n---\n"), 0o644))

	hash, err := CommitPaths(dir, []string{docPath}, Author{Name: "docsync", Email: "docsync@example.com"}, "docs: update changelog")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(t, err)
	require.Equal(t, "docs: update changelog", commit.Message)
	require.Equal(t, "docsync", commit.Author.Name)
}

func TestCommitPaths_NoPaths_NoCommit(t *testing.T) {
	dir := initRepo(t)

	hash, err := CommitPaths(dir, nil, Author{Name: "docsync", Email: "docsync@example.com"}, "empty")
	require.NoError(t, err)
	require.Empty(t, hash)
}

func TestCommitPaths_UnchangedFile_NoCommit(t *testing.T) {
	dir := initRepo(t)
	docPath := filepath.Join(dir, "overview.mdx")
	require.NoError(t, os.WriteFile(docPath, []byte("content\n"), 0o644))

	first, err := CommitPaths(dir, []string{docPath}, Author{Name: "docsync", Email: "docsync@example.com"}, "first")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := CommitPaths(dir, []string{docPath}, Author{Name: "docsync", Email: "docsync@example.com"}, "second")
	require.NoError(t, err)
	require.Empty(t, second)
}

func TestCommitPaths_OutsideRepository_Fails(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "changelog.mdx")
	require.NoError(t, os.WriteFile(docPath, []byte("x\n"), 0o644))

	_, err := CommitPaths(dir, []string{docPath}, Author{Name: "docsync", Email: "docsync@example.com"}, "msg")
	require.Error(t, err)
}
