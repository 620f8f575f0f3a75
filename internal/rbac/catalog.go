package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/templatecore/core/internal/platform/httpx"
)

// DocsPlaceholderPrefix marks endpoints whose base path is resolved from
// configuration at mount time. They are never cataloged.
const DocsPlaceholderPrefix = "${docs.api-path"

// PermissionStore is the slice of the store the catalog builder needs.
type PermissionStore interface {
	FindPermissionByEndpoint(ctx context.Context, endpoint string) (*Permission, error)
	InsertPermission(ctx context.Context, endpoint string, active bool) (Permission, error)
}

// CatalogRecorder counts permissions created by a build.
type CatalogRecorder interface {
	AddCatalogPermissions(n int)
}

// CatalogReport summarizes one build.
type CatalogReport struct {
	Seen    int
	Created int
	Skipped int
}

// CatalogOption customizes a CatalogBuilder.
type CatalogOption func(*CatalogBuilder)

// WithSkipPrefix replaces the placeholder prefix that excludes endpoints.
func WithSkipPrefix(prefix string) CatalogOption {
	return func(b *CatalogBuilder) { b.skipPrefix = prefix }
}

// WithCatalogMetrics records created permissions.
func WithCatalogMetrics(m CatalogRecorder) CatalogOption {
	return func(b *CatalogBuilder) { b.metrics = m }
}

// CatalogBuilder derives Permission rows from declared route tables.
type CatalogBuilder struct {
	store      PermissionStore
	logger     *slog.Logger
	skipPrefix string
	metrics    CatalogRecorder
}

// NewCatalogBuilder constructs a CatalogBuilder.
func NewCatalogBuilder(store PermissionStore, logger *slog.Logger, opts ...CatalogOption) *CatalogBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &CatalogBuilder{store: store, logger: logger, skipPrefix: DocsPlaceholderPrefix}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build inserts a permission for every declared endpoint not yet stored.
// Running it again against the same declarers creates nothing.
func (b *CatalogBuilder) Build(ctx context.Context, declarers ...httpx.RouteDeclarer) (CatalogReport, error) {
	var report CatalogReport
	seen := make(map[string]struct{})
	for _, declarer := range declarers {
		for _, endpoint := range declarer.Routes().Endpoints() {
			if _, dup := seen[endpoint]; dup {
				continue
			}
			seen[endpoint] = struct{}{}
			report.Seen++
			if b.skipPrefix != "" && strings.HasPrefix(endpoint, b.skipPrefix) {
				report.Skipped++
				continue
			}
			created, err := b.ensure(ctx, endpoint)
			if err != nil {
				return report, err
			}
			if created {
				report.Created++
			}
		}
	}
	if b.metrics != nil && report.Created > 0 {
		b.metrics.AddCatalogPermissions(report.Created)
	}
	b.logger.Info("permission catalog built",
		slog.Int("seen", report.Seen),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (b *CatalogBuilder) ensure(ctx context.Context, endpoint string) (bool, error) {
	existing, err := b.store.FindPermissionByEndpoint(ctx, endpoint)
	switch {
	case err == nil && existing != nil:
		return false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return false, fmt.Errorf("rbac: lookup permission %q: %w", endpoint, err)
	}
	if _, err := b.store.InsertPermission(ctx, endpoint, true); err != nil {
		return false, fmt.Errorf("rbac: insert permission %q: %w", endpoint, err)
	}
	b.logger.Debug("permission cataloged", slog.String("endpoint", endpoint))
	return true, nil
}
