// Package resolver maps link references written in Markdown documents to
// candidate filesystem paths. Resolution is pure path arithmetic: no
// filesystem access happens here and a resolved candidate may well not
// exist.
package resolver

import (
	"path/filepath"
	"strings"
)

// Roots reports the workspace root containing a document path.
type Roots interface {
	RootFor(path string) (string, bool)
}

type Resolver struct {
	roots Roots
}

func New(roots Roots) *Resolver {
	return &Resolver{roots: roots}
}

// Resolve builds the candidate absolute path for a reference written in the
// document at docPath. References starting with "/" are taken relative to
// the workspace root containing the document; everything else is taken
// relative to the document's directory, with "." and ".." segments
// normalized away. The second return is false when no candidate can be
// built: empty reference, workspace-relative reference without a root, or a
// document without a usable location.
func (r *Resolver) Resolve(docPath, reference string) (string, bool) {
	if reference == "" {
		return "", false
	}

	if strings.HasPrefix(reference, "/") {
		root, ok := r.roots.RootFor(docPath)
		if !ok {
			return "", false
		}
		return filepath.Join(root, reference), true
	}

	if docPath == "" || !filepath.IsAbs(docPath) {
		return "", false
	}
	return filepath.Join(filepath.Dir(docPath), reference), true
}
