package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Writer persists exported documents.
type Writer interface {
	// ResetProject removes everything previously written for the project.
	ResetProject(projectID string) error

	// WriteProject writes the project root document.
	WriteProject(projectID string, doc bson.D) error

	// WriteResource writes one resource document into its collection directory.
	WriteResource(projectID, collection, resourceID string, doc bson.D) error
}

// FileWriter writes relaxed Extended JSON files on an afero filesystem.
type FileWriter struct {
	fs     afero.Fs
	layout Layout
}

// NewFileWriter returns a writer rooted at layout on fs.
func NewFileWriter(fs afero.Fs, layout Layout) *FileWriter {
	return &FileWriter{fs: fs, layout: layout}
}

func (w *FileWriter) ResetProject(projectID string) error {
	if err := validName(projectID); err != nil {
		return err
	}
	dir := w.layout.ProjectDir(projectID)
	if err := w.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

func (w *FileWriter) WriteProject(projectID string, doc bson.D) error {
	if err := validName(projectID); err != nil {
		return err
	}
	return w.write(w.layout.ProjectFile(projectID), doc)
}

func (w *FileWriter) WriteResource(projectID, collection, resourceID string, doc bson.D) error {
	for _, name := range []string{projectID, collection, resourceID} {
		if err := validName(name); err != nil {
			return err
		}
	}
	return w.write(w.layout.ResourceFile(projectID, collection, resourceID), doc)
}

func (w *FileWriter) write(path string, doc bson.D) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(w.fs, path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode renders doc as compact relaxed Extended JSON.
func Encode(doc bson.D) ([]byte, error) {
	if doc == nil {
		doc = bson.D{}
	}
	return bson.MarshalExtJSON(doc, false, false)
}

// validName rejects path segments that would escape the snapshot layout.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid snapshot path segment %q", name)
	}
	return nil
}

// Ensure FileWriter implements Writer at compile time.
var _ Writer = (*FileWriter)(nil)
