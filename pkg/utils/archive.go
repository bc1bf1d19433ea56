package utils

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsafePath is returned when an archive entry would escape its destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !within(dest, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func within(dest, target string) bool {
	rel, err := filepath.Rel(dest, target)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ExtractZip extracts every entry of the zip archive src under dest.
func ExtractZip(src, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		target, err := safeJoin(dest, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		mode := file.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open %s in zip: %w", file.Name, err)
		}
		err = writeEntry(target, rc, mode)
		rc.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// ExtractTarGz extracts a gzip compressed tarball under dest, keeping file
// modes and symlinks that stay inside dest.
func ExtractTarGz(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode).Perm()|0o200); err != nil {
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) || !within(dest, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
				return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

// ExtractNatives copies the native libraries of a classifier jar into destDir,
// skipping entries under any of the exclude prefixes (META-INF/ in practice).
func ExtractNatives(srcJar, destDir string, exclude []string) (int, error) {
	zr, err := zip.OpenReader(srcJar)
	if err != nil {
		return 0, fmt.Errorf("failed to open native jar: %w", err)
	}
	defer zr.Close()

	count := 0
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || excluded(file.Name, exclude) {
			continue
		}

		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return count, err
		}

		rc, err := file.Open()
		if err != nil {
			return count, fmt.Errorf("failed to open file in jar: %w", err)
		}
		err = writeEntry(target, rc, 0o755)
		rc.Close()
		if err != nil {
			return count, fmt.Errorf("failed to extract file: %w", err)
		}
		count++
	}
	return count, nil
}

func excluded(name string, exclude []string) bool {
	for _, prefix := range exclude {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// ZipDirs writes the named sub directories of root into a zip archive on w.
// Missing directories are skipped; the names actually archived are returned.
func ZipDirs(w io.Writer, root string, names []string) ([]string, error) {
	zw := zip.NewWriter(w)
	archived := []string{}

	for _, name := range names {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				_, err := zw.Create(rel + "/")
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = rel
			hdr.Method = zip.Deflate
			hdr.Modified = info.ModTime().Truncate(time.Second)

			fw, err := zw.CreateHeader(hdr)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(fw, f)
			return err
		})
		if err != nil {
			zw.Close()
			return archived, fmt.Errorf("archive %s: %w", name, err)
		}
		archived = append(archived, name)
	}

	if err := zw.Close(); err != nil {
		return archived, err
	}
	return archived, nil
}
