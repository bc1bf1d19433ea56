package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return destinationFile.Close()
}

// WriteFileAtomic writes data to a temp file next to path and renames it in
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// MavenPath converts a maven coordinate (group:artifact:version[:classifier][@ext])
// into its repository relative path.
func MavenPath(coord string) (string, error) {
	ext := "jar"
	if i := strings.LastIndex(coord, "@"); i != -1 {
		ext = coord[i+1:]
		coord = coord[:i]
	}

	parts := strings.Split(coord, ":")
	if len(parts) < 3 {
		return "", fmt.Errorf("invalid maven coordinate format: %s (expected groupId:artifactId:version)", coord)
	}

	groupID, artifactID, version := parts[0], parts[1], parts[2]
	fileName := artifactID + "-" + version
	if len(parts) > 3 && parts[3] != "" {
		fileName += "-" + parts[3]
	}
	fileName += "." + ext

	return strings.Join([]string{strings.ReplaceAll(groupID, ".", "/"), artifactID, version, fileName}, "/"), nil
}

// BuildDownloadURLFromMavenPath turns base = https://maven.fabricmc.net/ and
// coord = org.ow2.asm:asm:9.8 into the artifact url and its relative path.
func BuildDownloadURLFromMavenPath(base, coord string) (string, string, error) {
	relPath, err := MavenPath(coord)
	if err != nil {
		return "", "", err
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + relPath, relPath, nil
}
