package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/darmiel/lakegate/internal/core"
)

var _ core.Auditor = (*FileAuditor)(nil)

// FileAuditor appends entries as JSON lines to a log file.
type FileAuditor struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileAuditor(path string) (*FileAuditor, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileAuditor{file: file}, nil
}

func (f *FileAuditor) Log(entry core.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshalling audit entry: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

func (f *FileAuditor) Close() error {
	return f.file.Close()
}
