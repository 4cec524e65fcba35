package main

import (
	"fmt"

	"github.com/hazyhaar/floorspeech/pkg/match"
	"github.com/hazyhaar/floorspeech/pkg/metrics"
	"github.com/hazyhaar/floorspeech/pkg/pipeline"
	"github.com/hazyhaar/floorspeech/pkg/roster"
	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// loadRosters loads every session roster under the configured directory.
func loadRosters() (*roster.Registry, error) {
	reg := roster.NewRegistry(cfg.RostersDir)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	logger.Info("rosters loaded", "sessions", reg.Sessions(), "legislators", reg.TotalLegislators())
	return reg, nil
}

// newPipeline wires the configured cascade into a pipeline over reg.
func newPipeline(reg *roster.Registry, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	ex, err := cfg.exceptions()
	if err != nil {
		return nil, err
	}
	return pipeline.New(reg, pipeline.Options{
		Workers: cfg.Workers,
		Parser:  speaker.NewParser(cfg.Normalize),
		Metrics: m,
		Logger:  logger,
		Cascade: &match.Cascade{
			Threshold:  cfg.Threshold,
			Exceptions: ex,
			Logger:     logger,
		},
	}), nil
}
