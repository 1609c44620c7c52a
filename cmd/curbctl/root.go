package main

import (
	"context"

	"curbfinder/internal/config"
	"curbfinder/internal/dataset"
	"curbfinder/internal/geo"
	"curbfinder/internal/pkg/logger"
	"curbfinder/internal/services"
	"curbfinder/pkg/utils"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once PersistentPreRunE has run.
type app struct {
	configPath string
	dataPath   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "curbctl",
		Short:         "Find the best curb spots near an address",
		Long:          "Loads curb records into a geohash-bucketed index and ranks nearby spots by designation and distance.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			a.cfg = cfg

			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return eris.Wrap(err, "init logger")
			}
			zap.ReplaceGlobals(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.dataPath, "data", "", "curb dataset (.json, .jsonl or .csv); overrides dataset.path")

	root.AddCommand(
		newSearchCmd(a),
		newBucketsCmd(a),
		newCoverageCmd(a),
	)
	return root
}

// service builds the index from the configured dataset.
func (a *app) service(ctx context.Context) (*services.CurbService, error) {
	path := a.dataPath
	if path == "" {
		path = a.cfg.Dataset.Path
	}
	if path == "" {
		return nil, eris.New("no dataset: pass --data or set dataset.path")
	}

	records, err := dataset.LoadFile(path)
	if err != nil {
		if len(records) == 0 {
			return nil, err
		}
		zap.L().Warn("dataset rows skipped", zap.Error(err))
	}

	svc := services.NewCurbService(
		geo.NewSpatialIndex(a.cfg.Index.Precision),
		geo.NewCoverageGenerator(a.cfg.Index.MaxCoverageCells),
		utils.NewCurbScoreCalculator(a.cfg.Scoring.DesignationWeight, a.cfg.Scoring.DistanceWeight),
		a.cfg.Search,
		zap.L(),
	)
	if _, err := svc.Load(ctx, records); err != nil {
		zap.L().Warn("curb records rejected", zap.Error(err))
	}
	return svc, nil
}
