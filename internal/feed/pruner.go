package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/models"
)

var ErrPackageNotFound = errors.New("package not found in feed state")

// Summary counts what a prune run did
type Summary struct {
	Versions  int
	Scheduled int
	Deleted   int
	Failed    int
}

// Pruner deletes old versions of one package from a feed
type Pruner struct {
	client *Client
	keep   int
	dryRun bool
	logger *zap.Logger
}

// NewPruner creates a pruner keeping the newest keep versions of each line
func NewPruner(client *Client, keep int, dryRun bool, logger *zap.Logger) *Pruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pruner{client: client, keep: keep, dryRun: dryRun, logger: logger}
}

// NewPrunerFromMetadata builds a client and pruner for the feed named in a
// package-added push metadata document
func NewPrunerFromMetadata(meta *models.PushMetadata, apiKey string, keep int, dryRun bool, logger *zap.Logger) (*Pruner, error) {
	if meta.Payload.FeedUrl == "" {
		return nil, errors.New("push metadata has no Payload.FeedUrl")
	}
	if meta.Payload.PackageIdentifier == "" {
		return nil, errors.New("push metadata has no Payload.PackageIdentifier")
	}
	client := NewClient(meta.Payload.FeedUrl, apiKey, nil, logger)
	return NewPruner(client, keep, dryRun, logger), nil
}

// Prune removes every version of packageID past the keep limit of its group.
// Individual delete failures are logged and counted, not returned.
func (p *Pruner) Prune(ctx context.Context, packageID string) (*Summary, error) {
	state, err := p.client.FeedState(ctx)
	if err != nil {
		return nil, err
	}

	versions, err := packageVersions(state, packageID)
	if err != nil {
		return nil, err
	}

	toDelete := VersionsToDelete(versions, p.keep)
	summary := &Summary{Versions: len(versions), Scheduled: len(toDelete)}

	p.logger.Info("Prune plan",
		zap.String("package_id", packageID),
		zap.Int("versions", len(versions)),
		zap.Int("keep", p.keep),
		zap.Strings("delete", toDelete),
		zap.Bool("dry_run", p.dryRun),
	)

	if p.dryRun {
		return summary, nil
	}

	for _, version := range toDelete {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := p.client.DeletePackage(ctx, packageID, version)
		if err != nil {
			summary.Failed++
			p.logger.Error("Delete failure",
				zap.String("package_id", packageID),
				zap.String("version", version),
				zap.Error(err),
			)
			continue
		}

		if result.HTTPStatus == http.StatusOK {
			summary.Deleted++
			p.logger.Info("Deleted package version",
				zap.String("package_id", packageID),
				zap.String("version", version),
				zap.Int("latency_ms", result.LatencyMs),
			)
			continue
		}

		summary.Failed++
		p.logger.Warn("Delete failure",
			zap.String("package_id", packageID),
			zap.String("version", version),
			zap.Int("http_status", result.HTTPStatus),
			zap.String("response_summary", result.ResponseSummary),
		)
	}

	return summary, nil
}

// packageVersions matches ids case-insensitively, as NuGet does
func packageVersions(state *models.FeedState, packageID string) ([]string, error) {
	for _, pkg := range state.Packages {
		if strings.EqualFold(pkg.ID, packageID) {
			return pkg.Versions, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageID)
}
