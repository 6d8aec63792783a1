// Package storage publishes compiled artifacts to blob storage and returns retrievable links.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
)

// Content types of published artifacts
const (
	ContentTypePDF = "application/pdf"
	ContentTypeTeX = "application/x-tex"
)

// System stores blobs under slash-separated keys
type System interface {
	// Upload streams data to the blob at key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// URL returns the retrievable location of the blob at key.
	URL(key string) string
}

type azure struct {
	client     *azblob.Client
	container  string
	publicBase string
	logger     *zap.Logger
}

// NewAzure creates an Azure Blob Storage system. The SDK retries transient failures itself.
func NewAzure(cfg config.Storage, logger *zap.Logger) (System, error) {
	opts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				RetryDelay:    time.Second,
				MaxRetryDelay: 20 * time.Second,
			},
		},
	}
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, opts)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &azure{
		client:     client,
		container:  cfg.Container,
		publicBase: cfg.PublicBaseURL,
		logger:     logger.Named("storage"),
	}, nil
}

// EnsureContainer creates the container if it does not exist yet
func EnsureContainer(ctx context.Context, sys System) error {
	a, ok := sys.(*azure)
	if !ok {
		return nil
	}
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	a.logger.Info("storage container ready", zap.String("container", a.container))
	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) URL(key string) string {
	if a.publicBase != "" {
		return joinURL(a.publicBase, key)
	}
	return a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(key).URL()
}

type local struct {
	dir        string
	publicBase string
}

// NewLocal creates a system that copies blobs under dir. Links are file URLs unless
// publicBase is set, e.g. when dir is served by a web server.
func NewLocal(dir, publicBase string) (System, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory %s: %w", dir, err)
	}
	return &local{dir: abs, publicBase: publicBase}, nil
}

func (l *local) Upload(ctx context.Context, key string, reader io.Reader, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dest := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

func (l *local) URL(key string) string {
	if l.publicBase != "" {
		return joinURL(l.publicBase, key)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(l.dir, filepath.FromSlash(key)))}
	return u.String()
}

func joinURL(base, key string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + key
	}
	u.Path = path.Join(u.Path, key)
	return u.String()
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
