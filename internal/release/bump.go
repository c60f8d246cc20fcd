package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"golang.org/x/mod/semver"
)

// Message is one commit that contributes to a bump.
type Message struct {
	Kind  CommitKind `json:"type"`
	Value string     `json:"value"`
}

// GitBump summarizes unpublished commits.
type GitBump struct {
	Type     BumpType  `json:"type"`
	Messages []Message `json:"messages"`
}

// OpenRepo opens the repository containing path.
func OpenRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("git repo open failed: %w", err)
	}
	return repo, nil
}

// RepoBump walks commits from HEAD back to the last publish commit or
// version tag. It returns nil when no commit calls for a bump.
func RepoBump(repo *git.Repository, prefixes Prefixes) (*GitBump, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("git head: %w", err)
	}
	tagged, err := versionTagCommits(repo)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	bump := &GitBump{}
	err = iter.ForEach(func(c *object.Commit) error {
		if tagged[c.Hash] {
			return storer.ErrStop
		}
		subject := firstLine(c.Message)
		if prefixes.isPublish(subject) {
			return storer.ErrStop
		}
		kind, value, ok := prefixes.classify(subject)
		if !ok {
			return nil
		}
		bump.Messages = append(bump.Messages, Message{Kind: kind, Value: value})
		if b := kind.Bump(); b > bump.Type {
			bump.Type = b
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	if bump.Type == BumpNone {
		return nil, nil
	}
	return bump, nil
}

func versionTagCommits(repo *git.Repository) (map[plumbing.Hash]bool, error) {
	refs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("git tags: %w", err)
	}
	out := map[plumbing.Hash]bool{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !semver.IsValid(ref.Name().Short()) {
			return nil
		}
		h := ref.Hash()
		if tag, err := repo.TagObject(h); err == nil {
			c, err := tag.Commit()
			if err != nil {
				return nil
			}
			h = c.Hash
		}
		out[h] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("git tags: %w", err)
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
