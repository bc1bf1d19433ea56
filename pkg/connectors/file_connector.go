package connectors

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"limeal.fr/cobalt/pkg/utils"
)

const FILE_SCHEME = "file"

// FileConnector writes into a local directory, e.g. file:///mnt/backups or file://./backups.
type FileConnector struct {
	Path string
}

func (c *FileConnector) NewFromURI(uri string) (Connector, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	finalPath := parsed.Host + parsed.Path
	if strings.HasPrefix(finalPath, "./") || finalPath == "." {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		finalPath = filepath.Join(pwd, strings.TrimPrefix(finalPath, "."))
	}

	return &FileConnector{Path: filepath.FromSlash(finalPath)}, nil
}

// NewFileConnector targets dir directly.
func NewFileConnector(dir string) *FileConnector {
	return &FileConnector{Path: dir}
}

func (c *FileConnector) GetPath() string {
	return c.Path
}

func (c *FileConnector) GetURI() string {
	return FILE_SCHEME + "://" + filepath.ToSlash(c.Path)
}

func (c *FileConnector) GetScheme() string {
	return FILE_SCHEME
}

func (c *FileConnector) Connect() error {
	return os.MkdirAll(c.Path, 0o755)
}

func (c *FileConnector) IsConnected() bool {
	return true
}

func (c *FileConnector) Close() error {
	return nil
}

func (c *FileConnector) SendFile(remotePath string, localPath string) error {
	return utils.CopyFile(localPath, filepath.Join(c.Path, remotePath))
}

func (c *FileConnector) HasFile(remotePath string) bool {
	_, err := os.Stat(filepath.Join(c.Path, remotePath))
	return err == nil
}

func (c *FileConnector) HasFileWithChecksum(remotePath string, checksumType ChecksumType, checksum string) bool {
	path := filepath.Join(c.Path, remotePath)
	sum, err := checksumOf(checksumType,
		func() (string, error) { return utils.FileSHA1(path), nil },
		func() (string, error) { return utils.FileSHA256(path), nil },
	)
	return err == nil && sum != "" && sum == checksum
}
