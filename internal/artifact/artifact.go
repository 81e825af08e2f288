// Package artifact defines the unit of work the pipeline improves: a named
// blob of source text. Artifacts are immutable value objects; the executor
// produces a new candidate rather than mutating the original.
package artifact

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"maestro/internal/errors"
)

// Artifact is one file-shaped unit of content moving through the pipeline.
type Artifact struct {
	// Name is the artifact's identity, typically a relative file path.
	Name string `json:"name"`

	// Content is the artifact's full text.
	Content string `json:"content"`
}

// Load reads an artifact from disk. Name is recorded relative to root when
// the path is inside it, otherwise as given.
func Load(root, path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, errors.NewNotFoundError("artifact", path).WithCause(err)
		}
		return Artifact{}, errors.Wrap(err, "reading artifact")
	}

	name := path
	if root != "" {
		if rel, relErr := filepath.Rel(root, path); relErr == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
	}
	return Artifact{Name: name, Content: string(data)}, nil
}

// WithContent returns a copy of the artifact carrying new content. The
// candidate keeps the original's name so reports line up across attempts.
func (a Artifact) WithContent(content string) Artifact {
	return Artifact{Name: a.Name, Content: content}
}

// IsGo reports whether the artifact looks like Go source.
func (a Artifact) IsGo() bool {
	return strings.HasSuffix(a.Name, ".go")
}

// Validator checks a candidate artifact's basic structural validity before
// it is scored.
type Validator interface {
	Validate(a Artifact) error
}

// SyntaxValidator validates Go artifacts by parsing them. Non-Go artifacts
// only need to be non-empty; their syntax is not this tool's to judge.
type SyntaxValidator struct{}

// Validate returns a structural-defect error if the artifact is empty or,
// for Go sources, fails to parse.
func (SyntaxValidator) Validate(a Artifact) error {
	if strings.TrimSpace(a.Content) == "" {
		return errors.Wrap(errors.ErrStructuralDefect, "artifact is empty")
	}
	if !a.IsGo() {
		return nil
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, a.Name, a.Content, parser.AllErrors); err != nil {
		return errors.Wrap(errors.ErrStructuralDefect, err.Error())
	}
	return nil
}

// NopValidator accepts every artifact. Used when structural checking is
// disabled in configuration.
type NopValidator struct{}

// Validate always returns nil.
func (NopValidator) Validate(Artifact) error {
	return nil
}
