// Package uploads stores contest image files and their thumbnails on disk.
package uploads

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nfnt/resize"
)

// Thumbnail bounds and encoding quality.
const (
	ThumbWidth   = 300
	ThumbHeight  = 300
	ThumbQuality = 85
)

// MaxFileSize caps a single uploaded file.
const MaxFileSize = 20 << 20

// Errors.
var (
	ErrOutsideRoot = errors.New("path escapes the upload root")
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrEmptyName   = errors.New("filename is empty after sanitising")
)

// Dir is an upload root. All paths passed to its methods are relative to it
// and use forward slashes.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory served as static files.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(d.root, clean), nil
}

// Save writes src to rel, creating parent directories.
// PRE: rel is relative to the root
// POST: file written, or removed again if it exceeded MaxFileSize
func (d *Dir) Save(rel string, src io.Reader) error {
	full, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(src, MaxFileSize+1))
	closeErr := f.Close()
	if err == nil && n > MaxFileSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Thumbnail decodes the image at srcRel and writes a bounded JPEG to dstRel.
// PRE: srcRel is a png, jpeg or gif file
// POST: dstRel holds a JPEG no larger than ThumbWidth x ThumbHeight
func (d *Dir) Thumbnail(srcRel, dstRel string) error {
	src, err := d.resolve(srcRel)
	if err != nil {
		return err
	}
	dst, err := d.resolve(dstRel)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	thumb := resize.Thumbnail(ThumbWidth, ThumbHeight, img, resize.Lanczos3)

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: ThumbQuality}); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Close()
}

// Remove deletes each rel path. Missing files are ignored.
func (d *Dir) Remove(rels ...string) error {
	var errs []error
	for _, rel := range rels {
		full, err := d.resolve(rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Exists reports whether rel names an existing file.
func (d *Dir) Exists(rel string) bool {
	full, err := d.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// SanitizeFilename reduces name to a safe base name of letters, digits,
// dot, dash and underscore. Spaces become underscores.
func SanitizeFilename(name string) (string, error) {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		return "", ErrEmptyName
	}
	return clean, nil
}
