package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Workspace is the transient folder used by one extract/reinsert session.
// Two calls on the same source document only collide when they share a
// session id.
type Workspace struct {
	Root      string
	SessionID string
}

// NewWorkspace creates <baseDir>/<stem> or, when namespaced,
// <baseDir>/<stem>-<uuid>.
func NewWorkspace(baseDir, sourcePath string, namespaced bool) (*Workspace, error) {
	ws := &Workspace{}
	name := Stem(sourcePath)
	if namespaced {
		ws.SessionID = uuid.NewString()
		name = name + "-" + ws.SessionID
	}
	ws.Root = filepath.Join(baseDir, name)
	if err := os.MkdirAll(ws.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

// SourceUnitsPath is where the Extractor persists the source units.
func (w *Workspace) SourceUnitsPath() string {
	return filepath.Join(w.Root, "src.json")
}

// TranslatedUnitsPath is where the orchestrator writes the translated units.
func (w *Workspace) TranslatedUnitsPath() string {
	return filepath.Join(w.Root, "translated.json")
}

// StagingDir holds serialized parts before the output container is assembled.
func (w *Workspace) StagingDir() string {
	return filepath.Join(w.Root, "staging")
}

// Cleanup removes the workspace.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Root)
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResultPath derives the output container path: <dir>/<stem><suffix><ext>.
func ResultPath(dir, sourcePath, suffix string) string {
	ext := filepath.Ext(sourcePath)
	return filepath.Join(dir, Stem(sourcePath)+suffix+ext)
}
