// Package core provides the business logic for the data-exploration
// dashboard: upload sessions, persistence of relations, and the
// filter/group/aggregate interaction that feeds tables, charts, and
// exports. This package has no UI dependencies and is shared by the web
// server and the CLI.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holtland/datalens/internal/config"
	"github.com/holtland/datalens/internal/dataset"
	"github.com/holtland/datalens/internal/ingest"
	"github.com/holtland/datalens/internal/store"
)

// Service provides the core dashboard operations. The store file is opened
// once per interaction and closed when the interaction completes; there is
// no pooling and no write coordination beyond SQLite's own locking, so
// concurrent persists to the same relation are last-write-wins. That is
// acceptable for a single-user local tool and is documented as a known
// limitation.
type Service struct {
	cfg *config.Config

	mu       sync.Mutex
	sessions map[string]*session
}

// session holds a parsed upload that has not been persisted yet. The
// preview/persist split mirrors the dashboard sidebar: parsing happens on
// upload, writing to the store only on an explicit user action.
type session struct {
	ID       string
	FileName string
	Table    *dataset.Table
	Created  time.Time
}

// NewService creates a new Service instance.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		sessions: make(map[string]*session),
	}
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// openStore opens the configured store file for one interaction.
func (s *Service) openStore() (*store.Store, error) {
	return store.Open(s.cfg.Store.Path)
}

// UploadPreview describes a parsed upload session.
type UploadPreview struct {
	SessionID string       `json:"session_id"`
	FileName  string       `json:"file_name"`
	Columns   []ColumnInfo `json:"columns"`
	Rows      int          `json:"rows"`
	Preview   [][]any      `json:"preview"` // first PreviewRows rows, row-major
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// IngestUpload parses an uploaded file into a session table. The declared
// file extension selects the reader; parser failures propagate unchanged
// as *ingest.FormatError and nothing is retained.
func (s *Service) IngestUpload(fileName string, data []byte) (*UploadPreview, error) {
	if int64(len(data)) > s.cfg.Upload.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d)", len(data), s.cfg.Upload.MaxFileSize)
	}

	t, err := ingest.Read(fileName, data)
	if err != nil {
		return nil, err
	}

	sess := &session{
		ID:       uuid.NewString(),
		FileName: fileName,
		Table:    t,
		Created:  time.Now(),
	}

	s.mu.Lock()
	s.pruneSessionsLocked()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return &UploadPreview{
		SessionID: sess.ID,
		FileName:  fileName,
		Columns:   columnInfos(t),
		Rows:      t.NumRows(),
		Preview:   previewRows(t, s.cfg.Upload.PreviewRows),
	}, nil
}

// Session returns the parsed table for an upload session.
func (s *Service) Session(id string) (*dataset.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneSessionsLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("upload session not found: %s", id)
	}
	return sess.Table, nil
}

// pruneSessionsLocked drops sessions older than the configured TTL.
// Caller holds s.mu.
func (s *Service) pruneSessionsLocked() {
	cutoff := time.Now().Add(-s.cfg.Upload.SessionTTL)
	for id, sess := range s.sessions {
		if sess.Created.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// Persist writes a session's table into the store as relation name,
// replacing any prior relation of that name wholesale. The session stays
// available so the same upload can be persisted under several names.
func (s *Service) Persist(ctx context.Context, sessionID, name string) error {
	t, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return s.PersistTable(ctx, name, t)
}

// PersistTable writes a table directly into the store (used by the CLI,
// which has no session registry).
func (s *Service) PersistTable(ctx context.Context, name string, t *dataset.Table) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Replace(ctx, name, t)
}

// Relations lists the persisted relation names, sorted.
func (s *Service) Relations(ctx context.Context) ([]string, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.List(ctx)
}

// Retrieve loads a full relation into memory.
func (s *Service) Retrieve(ctx context.Context, name string) (*dataset.Table, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(ctx, name)
}

// DropRelation removes a persisted relation.
func (s *Service) DropRelation(ctx context.Context, name string) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Drop(ctx, name)
}

// columnInfos builds display metadata for a table's columns.
func columnInfos(t *dataset.Table) []ColumnInfo {
	infos := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		infos[i] = ColumnInfo{Name: c.Name, Kind: c.Kind.String()}
	}
	return infos
}

// previewRows materializes up to limit rows in row-major order.
func previewRows(t *dataset.Table, limit int) [][]any {
	n := t.NumRows()
	if n > limit {
		n = limit
	}
	rows := make([][]any, n)
	for i := 0; i < n; i++ {
		rows[i] = t.Row(i)
	}
	return rows
}
