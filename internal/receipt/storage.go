package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned when an upload stored zero bytes
	ErrEmptyFile = errors.New("uploaded file is empty")
	// ErrInvalidFilename is returned when an upload has no usable base name
	ErrInvalidFilename = errors.New("invalid filename")
)

// Naming selects how stored uploads are named
type Naming string

const (
	// NamingOriginal keeps the client's file name; a later upload with the same name replaces it
	NamingOriginal Naming = "original"
	// NamingUUID prefixes the client's file name with a random UUID
	NamingUUID Naming = "uuid"
	// NamingSHA256 names the file after the hex SHA-256 of its content, keeping the extension
	NamingSHA256 Naming = "sha256"
)

// ParseNaming validates a naming strategy name
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case NamingOriginal, NamingUUID, NamingSHA256:
		return n, nil
	case "":
		return NamingOriginal, nil
	default:
		return "", fmt.Errorf("unknown naming strategy %q: use original, uuid or sha256", s)
	}
}

// StoredFile describes an upload written to storage
type StoredFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Storage defines the interface for upload storage
type Storage interface {
	// Save writes the content of r under a name derived from filename
	Save(filename string, r io.Reader) (*StoredFile, error)
}

// LocalStorage implements the Storage interface using a local directory
type LocalStorage struct {
	basePath string
	naming   Naming
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed
func NewLocalStorage(basePath string, naming Naming) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	if naming == "" {
		naming = NamingOriginal
	}

	return &LocalStorage{
		basePath: basePath,
		naming:   naming,
	}, nil
}

// baseName strips any directory components a client may have put in the file name
func baseName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// Save streams r into a temp file in the storage directory and renames it into place,
// so concurrent uploads of the same name never leave a partially written file.
func (l *LocalStorage) Save(filename string, r io.Reader) (*StoredFile, error) {
	name, err := baseName(filename)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename is a harmless no-op
	defer os.Remove(tmpPath)

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing file: %w", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("checking file: %w", err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}

	sum := hex.EncodeToString(h.Sum(nil))
	path := filepath.Join(l.basePath, l.storedName(name, sum))
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("moving file into place: %w", err)
	}

	return &StoredFile{
		Path:   path,
		Size:   info.Size(),
		SHA256: sum,
	}, nil
}

func (l *LocalStorage) storedName(name, sum string) string {
	switch l.naming {
	case NamingUUID:
		return uuid.NewString() + "_" + name
	case NamingSHA256:
		return sum + strings.ToLower(filepath.Ext(name))
	default:
		return name
	}
}
