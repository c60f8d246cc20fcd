package release

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author identifies who records release commits. A zero Author defers to
// the repository's git config.
type Author struct {
	Name  string
	Email string
}

func (a Author) signature() *object.Signature {
	if a.Name == "" && a.Email == "" {
		return nil
	}
	return &object.Signature{Name: a.Name, Email: a.Email, When: time.Now()}
}

// Commit records the staged changes with message.
func Commit(repo *git.Repository, message string, author Author) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git worktree: %w", err)
	}
	sig := author.signature()
	h, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git commit: %w", err)
	}
	return h, nil
}

// WritePublishCommit stages the manifest and commits it as the publish
// commit of pkg.
func WritePublishCommit(repo *git.Repository, pkg PackageBump, prefixes Prefixes, author Author) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git worktree: %w", err)
	}
	rel, err := repoRelative(wt.Filesystem.Root(), pkg.Manifest)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := wt.Add(rel); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git add %s: %w", rel, err)
	}
	return Commit(repo, PublishMessage(pkg, prefixes), author)
}

// PublishMessage is the subject of a publish commit.
func PublishMessage(pkg PackageBump, prefixes Prefixes) string {
	return fmt.Sprintf("%s v%s", prefixes.Publish, pkg.Next)
}

// WritePublishTag tags HEAD with "v" + the next version.
func WritePublishTag(repo *git.Repository, pkg PackageBump) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("git head: %w", err)
	}
	name := "v" + pkg.Next
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		return "", fmt.Errorf("git tag %s: %w", name, err)
	}
	return name, nil
}

func repoRelative(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return filepath.ToSlash(rel), nil
}
