package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultRoot is the top-level folder artifacts are published under
const DefaultRoot = "JobApps"

// Publisher uploads the artifacts of one record and returns their links
type Publisher struct {
	sys    System
	root   string
	logger *zap.Logger
}

// NewPublisher creates a publisher writing under root
func NewPublisher(sys System, root string, logger *zap.Logger) *Publisher {
	if root == "" {
		root = DefaultRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{sys: sys, root: root, logger: logger.Named("publish")}
}

// New builds the publisher for the configured backend. It returns nil when publishing is
// disabled.
func New(ctx context.Context, cfg config.Storage, logger *zap.Logger) (*Publisher, error) {
	var (
		sys System
		err error
	)
	switch cfg.Backend {
	case config.StorageNone:
		return nil, nil
	case config.StorageAzure:
		sys, err = NewAzure(cfg, logger)
		if err == nil {
			err = EnsureContainer(ctx, sys)
		}
	case config.StorageLocal, "":
		sys, err = NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	default:
		return nil, &Error{Message: fmt.Sprintf("unknown storage backend %q", cfg.Backend)}
	}
	if err != nil {
		return nil, &Error{Message: "failed to initialize storage", Cause: err}
	}
	return NewPublisher(sys, cfg.Root, logger), nil
}

// JobID is the record id with dashes removed
func JobID(recordID string) string {
	return strings.ReplaceAll(recordID, "-", "")
}

// Key returns the deterministic key root/Company/Role/jobID/file
func Key(root, company, role, jobID, file string) string {
	return path.Join(root,
		rendering.CleanPathSegment(company),
		rendering.CleanPathSegment(role),
		JobID(jobID),
		file)
}

// Publish uploads the PDF and TeX of one record concurrently and waits for both
func (p *Publisher) Publish(ctx context.Context, set types.ArtifactSet) (types.ArtifactLinks, error) {
	uploads := []struct {
		local       string
		contentType string
		link        *string
	}{
		{set.PDFPath, ContentTypePDF, nil},
		{set.TeXPath, ContentTypeTeX, nil},
	}

	var links types.ArtifactLinks
	uploads[0].link = &links.PDF
	uploads[1].link = &links.TeX

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uploads {
		if u.local == "" {
			continue
		}
		key := Key(p.root, set.Company, set.Role, set.JobID, filepath.Base(u.local))
		g.Go(func() error {
			f, err := os.Open(u.local)
			if err != nil {
				return &Error{Message: fmt.Sprintf("failed to open %s", u.local), Cause: err}
			}
			defer f.Close()

			if err := p.sys.Upload(gctx, key, f, u.contentType); err != nil {
				return &Error{Message: fmt.Sprintf("failed to upload %s", key), Cause: err}
			}
			*u.link = p.sys.URL(key)
			p.logger.Debug("uploaded artifact", zap.String("key", key))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.ArtifactLinks{}, err
	}
	return links, nil
}
