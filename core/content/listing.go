package content

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ListAllUserContent builds the content listing of every root: all directory
// names first, then all known content files and archives. Each name is
// relative to its root, prefixed with the root's base name, slash separated
// and terminated by a newline. Missing roots contribute nothing; unreadable
// paths are logged and left out.
func (s *Scanner) ListAllUserContent(roots []string) string {
	var dirs, files []string
	for _, root := range roots {
		base := filepath.Base(filepath.Clean(root))
		d, f := s.listFS(os.DirFS(root), base)
		dirs = append(dirs, d...)
		files = append(files, f...)
	}

	var sb strings.Builder
	for _, name := range dirs {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	for _, name := range files {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s *Scanner) listFS(fsys fs.FS, base string) (dirs, files []string) {
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("Skipping unreadable path", zap.String("path", path.Join(base, p)), zap.Error(err))
			}
			if d == nil || d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == "." {
			return nil
		}
		name := base + "/" + p
		switch {
		case d.IsDir():
			dirs = append(dirs, name)
		case d.Type().IsRegular() && (IsKnownExtension(Ext(d.Name())) || IsArchive(d.Name())):
			files = append(files, name)
		}
		return nil
	})
	return dirs, files
}
