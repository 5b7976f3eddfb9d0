package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"discord-invite-tracker/internal/models"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	CountsFile      = "invite_counts.json"
	AttributionFile = "invited_by.json"
)

// FileStore keeps each table in its own JSON object file under Dir. Every
// save writes a temp file next to the target and renames it into place.
type FileStore struct {
	Dir    string
	logger *zap.Logger

	mu sync.Mutex
}

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{Dir: dir, logger: logger}, nil
}

// LoadCounts keeps the key order of the file, which is the order inviters
// were first credited.
func (f *FileStore) LoadCounts(ctx context.Context) ([]models.InviteCount, error) {
	data, err := f.read(CountsFile)
	if err != nil || data == nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid json", CountsFile)
	}

	var rows []models.InviteCount
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		rows = append(rows, models.InviteCount{UserID: key.String(), Count: int(value.Int())})
		return true
	})
	return rows, nil
}

func (f *FileStore) LoadAttribution(ctx context.Context) (map[string]string, error) {
	data, err := f.read(AttributionFile)
	if err != nil || data == nil {
		return map[string]string{}, err
	}
	invitedBy := make(map[string]string)
	if err := json.Unmarshal(data, &invitedBy); err != nil {
		return nil, fmt.Errorf("%s: %w", AttributionFile, err)
	}
	return invitedBy, nil
}

func (f *FileStore) SaveCounts(ctx context.Context, counts []models.InviteCount) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, row := range counts {
		key, err := json.Marshal(row.UserID)
		if err != nil {
			return err
		}
		if i > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, "\n    %s: %d", key, row.Count)
	}
	if len(counts) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return f.write(CountsFile, buf.Bytes())
}

func (f *FileStore) SaveAttribution(ctx context.Context, invitedBy map[string]string) error {
	if invitedBy == nil {
		invitedBy = map[string]string{}
	}
	data, err := json.MarshalIndent(invitedBy, "", "    ")
	if err != nil {
		return err
	}
	return f.write(AttributionFile, append(data, '\n'))
}

func (f *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (f *FileStore) write(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := filepath.Join(f.Dir, name)
	tmp, err := os.CreateTemp(f.Dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return err
	}
	f.logger.Debug("table written", zap.String("file", target), zap.Int("bytes", len(data)))
	return nil
}
