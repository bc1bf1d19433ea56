package connectors

import (
	"fmt"
	"net/url"
)

type ChecksumType int

const (
	ChecksumTypeSHA1 ChecksumType = iota + 1
	ChecksumTypeSHA256
)

// Connector is a destination backups are uploaded to.
type Connector interface {
	NewFromURI(uri string) (Connector, error)

	GetPath() string
	GetURI() string
	GetScheme() string // file, sftp

	Connect() error
	IsConnected() bool
	Close() error

	SendFile(remotePath string, localPath string) error

	HasFile(remotePath string) bool
	HasFileWithChecksum(remotePath string, checksumType ChecksumType, checksum string) bool
}

var CONNECTORS = map[string]Connector{
	SFTP_SCHEME: new(SFTPConnector),
	FILE_SCHEME: new(FileConnector),
}

// FindConnectorFromURI returns the connector registered for the uri scheme.
func FindConnectorFromURI(uri string) (Connector, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid destination %q: %w", uri, err)
	}

	connector, ok := CONNECTORS[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported destination scheme %q (available: file, sftp)", parsed.Scheme)
	}
	return connector.NewFromURI(uri)
}

func checksumOf(checksumType ChecksumType, sha1, sha256 func() (string, error)) (string, error) {
	switch checksumType {
	case ChecksumTypeSHA1:
		return sha1()
	case ChecksumTypeSHA256:
		return sha256()
	}
	return "", fmt.Errorf("unknown checksum type %d", checksumType)
}
