package vcs

import (
	"encoding/hex"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Project identifies the code base an analysis runs on.
type Project struct {
	// Root is the repository root, or the analyzed path outside a repository.
	Root string `json:"root"`
	// Revision is the HEAD commit hash, empty outside a repository or
	// before the first commit.
	Revision string `json:"revision,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

// ResolveProject finds the repository containing path. Paths outside a
// repository resolve to themselves.
func ResolveProject(opener Opener, path string) Project {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if opener == nil {
		return Project{Root: abs}
	}

	repo, err := opener.PlainOpenWithDetect(abs)
	if err != nil {
		return Project{Root: abs}
	}
	p := Project{Root: repo.RepoPath()}
	if head, err := repo.Head(); err == nil {
		p.Revision = head.Hash().String()
		if head.Name().IsBranch() {
			p.Branch = head.Name().Short()
		}
	}
	return p
}

// Key returns a short stable identifier for cache namespacing. It changes
// with the root and the checked out revision.
func (p Project) Key() string {
	h := blake3.New()
	h.Write([]byte(p.Root))
	h.Write([]byte{'@'})
	h.Write([]byte(p.Revision))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
