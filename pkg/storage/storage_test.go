package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/meddoc/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=meddocstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/meddocstore;"

func newLocal(t *testing.T) storage.System {
	t.Helper()
	cfg := &storage.Config{
		Provider:      storage.ProviderLocal,
		ContainerName: "documents",
		Local:         storage.LocalConfig{Root: t.TempDir()},
	}

	sys, err := storage.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{
			name: "azure connection string",
			cfg: storage.Config{
				Provider:      storage.ProviderAzure,
				ContainerName: "documents",
				Azure:         storage.AzureConfig{ConnectionString: azuriteConnString},
			},
		},
		{
			name: "azure invalid connection string",
			cfg: storage.Config{
				Provider:      storage.ProviderAzure,
				ContainerName: "documents",
				Azure:         storage.AzureConfig{ConnectionString: "not-a-connection-string"},
			},
			wantErr: true,
		},
		{
			name: "s3 endpoint",
			cfg: storage.Config{
				Provider:      storage.ProviderS3,
				ContainerName: "documents",
				S3:            storage.S3Config{Endpoint: "localhost:9000", AccessKey: "minio", SecretKey: "minio123"},
			},
		},
		{
			name: "local root",
			cfg: storage.Config{
				Provider:      storage.ProviderLocal,
				ContainerName: "documents",
				Local:         storage.LocalConfig{Root: "storage"},
			},
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := storage.New(&tt.cfg, slog.Default())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if sys == nil {
				t.Fatal("New() returned nil system")
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ErrNotFound maps to 404", storage.ErrNotFound, http.StatusNotFound},
		{"ErrEmptyKey maps to 400", storage.ErrEmptyKey, http.StatusBadRequest},
		{"ErrInvalidKey maps to 400", storage.ErrInvalidKey, http.StatusBadRequest},
		{"wrapped ErrNotFound maps to 404", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown error maps to 500", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storage.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys := newLocal(t)
	ctx := context.Background()
	key := "evaluations/latest.json"

	if ok, err := sys.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists before upload = %v, %v; want false, nil", ok, err)
	}

	if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Download before upload error = %v, want ErrNotFound", err)
	}

	if err := sys.Upload(ctx, key, bytes.NewReader([]byte(`{"items":2}`)), "application/json"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if ok, err := sys.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("Exists after upload = %v, %v; want true, nil", ok, err)
	}

	rc, err := sys.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()

	if string(data) != `{"items":2}` {
		t.Errorf("Download() = %s, want {\"items\":2}", data)
	}

	if err := sys.Upload(ctx, key, bytes.NewReader([]byte(`{"items":3}`)), "application/json"); err != nil {
		t.Fatalf("overwrite Upload() error = %v", err)
	}
	rc, _ = sys.Download(ctx, key)
	data, _ = io.ReadAll(rc)
	rc.Close()
	if string(data) != `{"items":3}` {
		t.Errorf("Download() after overwrite = %s, want {\"items\":3}", data)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := sys.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestLocalUploadErrors(t *testing.T) {
	errRead := errors.New("connection reset")
	ctx := context.Background()

	t.Run("reader failure", func(t *testing.T) {
		sys := newLocal(t)
		err := sys.Upload(ctx, "evaluations/latest.json", failingReader{errRead}, "application/json")
		if !errors.Is(err, errRead) {
			t.Errorf("Upload() error = %v, want %v", err, errRead)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		sys := newLocal(t)
		if err := sys.Upload(ctx, "evaluations", bytes.NewReader([]byte("x")), "text/plain"); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}

		err := sys.Upload(ctx, "evaluations/latest.json", bytes.NewReader([]byte("{}")), "application/json")
		if err == nil {
			t.Error("Upload() under a file succeeded, want error")
		}
	})
}

func TestKeyValidation(t *testing.T) {
	sys := newLocal(t)

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "documents/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "docs/..hidden/file.pdf", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "text/plain")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}

			_, err = sys.Download(ctx, tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}

			err = sys.Delete(ctx, tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}

			_, err = sys.Exists(ctx, tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
