package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
)

// Part is one parsed XML entry of the container.
type Part struct {
	Name     string
	Doc      *xmltree.Document
	modified bool
}

// MarkModified flags the part for replacement when the package is saved.
func (p *Part) MarkModified() {
	p.modified = true
}

// Modified reports whether the part will be replaced on save.
func (p *Part) Modified() bool {
	return p.modified
}

// Package is an open DOCX container with its main part and header/footer
// parts parsed. It must not be shared between goroutines.
type Package struct {
	path          string
	reader        *zip.ReadCloser
	Main          *Part
	HeaderFooters []*Part
	byName        map[string]*Part
}

// IsHeaderFooterPart reports whether a container entry is a header or footer part.
func IsHeaderFooterPart(name string) bool {
	return (strings.HasPrefix(name, HeaderPrefix) || strings.HasPrefix(name, FooterPrefix)) &&
		strings.HasSuffix(name, ".xml")
}

// OpenPackage opens the container at path and parses the main part and every
// header/footer part in container order. Any unreadable entry or unparsable
// part is fatal.
func OpenPackage(path string) (*Package, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX %s: %w", path, err)
	}

	pkg := &Package{
		path:   path,
		reader: reader,
		byName: make(map[string]*Part),
	}

	for _, file := range reader.File {
		switch {
		case file.Name == MainPartName:
			part, err := parsePart(file)
			if err != nil {
				reader.Close()
				return nil, err
			}
			pkg.Main = part
			pkg.byName[file.Name] = part
		case IsHeaderFooterPart(file.Name):
			part, err := parsePart(file)
			if err != nil {
				reader.Close()
				return nil, err
			}
			pkg.HeaderFooters = append(pkg.HeaderFooters, part)
			pkg.byName[file.Name] = part
		}
	}

	if pkg.Main == nil {
		reader.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrMainPartMissing)
	}
	return pkg, nil
}

func parsePart(file *zip.File) (*Part, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}

	doc, err := xmltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file.Name, err)
	}
	return &Part{Name: file.Name, Doc: doc}, nil
}

// Path returns the container path the package was opened from.
func (p *Package) Path() string {
	return p.path
}

// Part returns a parsed part by container name.
func (p *Package) Part(name string) (*Part, bool) {
	part, ok := p.byName[name]
	return part, ok
}

// Close releases the underlying archive.
func (p *Package) Close() error {
	return p.reader.Close()
}

// Save writes a new container to resultPath: the main part and every
// modified header/footer part are replaced by their serialized trees, every
// other entry is copied byte for byte. Replaced parts are first staged under
// stagingDir, and the archive is assembled in a temporary file next to
// resultPath that is only renamed into place once complete.
func (p *Package) Save(resultPath, stagingDir string) error {
	staged, err := p.stage(stagingDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resultPath), 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(resultPath), "."+filepath.Base(resultPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := p.writeArchive(tmp, staged); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp archive: %w", err)
	}
	if err := os.Rename(tmpPath, resultPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish %s: %w", resultPath, err)
	}
	committed = true
	return nil
}

// stage serializes the parts to be replaced into stagingDir and returns the
// staged file path per part name.
func (p *Package) stage(stagingDir string) (map[string]string, error) {
	parts := []*Part{p.Main}
	for _, hf := range p.HeaderFooters {
		if hf.modified {
			parts = append(parts, hf)
		}
	}

	staged := make(map[string]string, len(parts))
	for _, part := range parts {
		dest := filepath.Join(stagingDir, filepath.FromSlash(part.Name))
		if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(stagingDir)) {
			return nil, fmt.Errorf("invalid part path: %s", part.Name)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		if err := os.WriteFile(dest, part.Doc.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", part.Name, err)
		}
		staged[part.Name] = dest
	}
	return staged, nil
}

func (p *Package) writeArchive(w io.Writer, staged map[string]string) error {
	zw := zip.NewWriter(w)

	for _, file := range p.reader.File {
		stagedPath, replace := staged[file.Name]
		if !replace {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		data, err := os.ReadFile(stagedPath)
		if err != nil {
			return fmt.Errorf("failed to read staged %s: %w", file.Name, err)
		}
		header := &zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		}
		writer, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
