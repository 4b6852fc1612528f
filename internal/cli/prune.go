package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/config"
	"github.com/tizendotnet/netcore-jenkins/internal/feed"
	"github.com/tizendotnet/netcore-jenkins/internal/logger"
	"github.com/tizendotnet/netcore-jenkins/internal/models"
)

var (
	pruneMetafile string
	pruneKey      string
	pruneKeep     int
	pruneDryRun   bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old preview versions of the pushed package",
	Long: `Reads the push metadata written by the webhook server (the PUSH_METADATA
build parameter saved to a file), looks the package up in the feed state and
hard-deletes every version past the newest --keep of each release/preview line.
Logging follows the same config file and LOG_LEVEL variable as serve.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVarP(&pruneMetafile, "metafile", "m", "", "push metadata JSON file")
	pruneCmd.Flags().StringVarP(&pruneKey, "key", "k", "", "feed API key")
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", feed.DefaultKeep, "versions to keep per release/preview line")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "only log what would be deleted")
	_ = pruneCmd.MarkFlagRequired("metafile")
	_ = pruneCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	meta, err := readPushMetadata(pruneMetafile)
	if err != nil {
		return err
	}

	pruner, err := feed.NewPrunerFromMetadata(meta, pruneKey, pruneKeep, pruneDryRun, logger.L())
	if err != nil {
		return err
	}

	summary, err := pruner.Prune(cmd.Context(), meta.Payload.PackageIdentifier)
	if err != nil {
		logger.Error("Prune failed",
			zap.String("package_id", meta.Payload.PackageIdentifier),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Prune finished",
		zap.String("package_id", meta.Payload.PackageIdentifier),
		zap.Int("versions", summary.Versions),
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("deleted", summary.Deleted),
		zap.Int("failed", summary.Failed),
	)
	return nil
}

func readPushMetadata(path string) (*models.PushMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metafile: %w", err)
	}

	var meta models.PushMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile %s: %w", path, err)
	}
	if meta.PayloadType != "" && meta.PayloadType != models.PackageAdded {
		return nil, fmt.Errorf("metafile holds a %s payload, expected %s", meta.PayloadType, models.PackageAdded)
	}
	return &meta, nil
}
