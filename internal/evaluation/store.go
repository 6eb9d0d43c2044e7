package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/JaimeStill/meddoc/pkg/storage"
)

const (
	reportContentType = "application/json"
	latestName        = "latest.json"
	timestampLayout   = "20060102T150405.000000000Z"
)

// reportStore keeps reports in blob storage under a key prefix: one immutable
// object per run plus an overwritten latest copy.
type reportStore struct {
	storage storage.System
	prefix  string
}

func (s *reportStore) key(r *Report) string {
	return path.Join(s.prefix, r.Timestamp.UTC().Format(timestampLayout)+".json")
}

func (s *reportStore) latestKey() string {
	return path.Join(s.prefix, latestName)
}

func (s *reportStore) save(ctx context.Context, r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := s.key(r)

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check report %s: %w", key, err)
	}
	if exists {
		return "", fmt.Errorf("store report %s: key already written", key)
	}

	for _, k := range []string{key, s.latestKey()} {
		if err := s.storage.Upload(ctx, k, bytes.NewReader(data), reportContentType); err != nil {
			return "", fmt.Errorf("store report %s: %w", k, err)
		}
	}

	return key, nil
}

func (s *reportStore) latest(ctx context.Context) (*Report, error) {
	rc, err := s.storage.Download(ctx, s.latestKey())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	defer rc.Close()

	var r Report
	if err := json.NewDecoder(rc).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode latest report: %w", err)
	}
	return &r, nil
}
