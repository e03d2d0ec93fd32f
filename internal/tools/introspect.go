package tools

import (
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CurrentBranch returns the checked-out branch name, or "" when dir is not
// a repository or HEAD is detached.
func CurrentBranch(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}

// LatestTag returns the tag on the nearest tagged commit reachable from
// HEAD, the way `git describe --tags --abbrev=0` resolves versions. The
// second return is false when dir is not a repository or no reachable tag
// exists.
func LatestTag(dir string) (string, bool) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", false
	}

	head, err := repo.Head()
	if err != nil {
		return "", false
	}

	// Index tags by the commit they point at. Annotated tags are
	// dereferenced to their target commit.
	tagged := make(map[plumbing.Hash]string)
	iter, err := repo.Tags()
	if err != nil {
		return "", false
	}
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tag, err := repo.TagObject(hash); err == nil {
			hash = tag.Target
		}
		tagged[hash] = ref.Name().Short()
		return nil
	})
	if len(tagged) == 0 {
		return "", false
	}

	log, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return "", false
	}
	defer log.Close()

	for {
		commit, err := log.Next()
		if err != nil {
			return "", false
		}
		if name, ok := tagged[commit.Hash]; ok {
			return name, true
		}
	}
}
