package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the collection as a single JSON document, with a sibling
// backup file consumed by Reset. A missing file reads as an empty collection
// rather than failing the request.
type FileStore struct {
	path       string
	backupPath string
}

// NewFileStore stores orders at path and reads backups from "<path minus
// extension>_backup.json" unless backupPath overrides it.
func NewFileStore(path, backupPath string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("orders file path is required")
	}
	if backupPath == "" {
		ext := filepath.Ext(path)
		backupPath = path[:len(path)-len(ext)] + "_backup" + ext
	}
	return &FileStore{path: path, backupPath: backupPath}, nil
}

func (f *FileStore) Load(ctx context.Context) (map[string]Order, error) {
	return readOrdersFile(f.path)
}

func (f *FileStore) Backup(ctx context.Context) (map[string]Order, error) {
	return readOrdersFile(f.backupPath)
}

func (f *FileStore) Save(ctx context.Context, orders map[string]Order) error {
	data, err := json.MarshalIndent(orders, "", "    ")
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write orders: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	return nil
}

func readOrdersFile(path string) (map[string]Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Order{}, nil
		}
		return nil, fmt.Errorf("read orders: %w", err)
	}
	orders := make(map[string]Order)
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
