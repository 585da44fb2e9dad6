package endpoints

import (
	"context"
	"errors"

	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/pipeline"
	"github.com/fieldlens/fieldlens/internal/svcctx"
	"github.com/fieldlens/fieldlens/internal/types"
	"github.com/fieldlens/fieldlens/internal/verify"
)

// ProcessDocument runs one document through the extraction pipeline
// using services from the context. Empty providerName and presetName
// fall back to the configured defaults.
func ProcessDocument(ctx context.Context, doc *types.Document, providerName, presetName string) error {
	registry := svcctx.ProvidersFrom(ctx)
	if registry == nil {
		return errors.New("provider registry not initialized")
	}
	homeDir := svcctx.HomeFrom(ctx)
	if homeDir == nil {
		return errors.New("home directory not initialized")
	}
	schemaStore := svcctx.SchemaFrom(ctx)
	if schemaStore == nil {
		return errors.New("schema store not initialized")
	}
	logger := svcctx.LoggerFrom(ctx)

	if cm := svcctx.ConfigFrom(ctx); cm != nil {
		cfg := cm.Get()
		if providerName == "" {
			providerName = cfg.Defaults.Provider
		}
		if presetName == "" {
			presetName = cfg.Defaults.Preset
		}
	}

	vision, err := registry.Get(providerName)
	if err != nil {
		return err
	}

	schema, err := resolveSchema(schemaStore.Get(), presetName)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(
		extract.NewClient(vision, logger),
		verify.NewVerifier(vision, logger),
		schema,
		homeDir.ImagesPath(),
		logger,
	)
	return runner.Process(ctx, doc)
}

// resolveSchema narrows the active schema to a preset, or returns it
// unchanged when presetName is empty.
func resolveSchema(schema *fields.Schema, presetName string) (*fields.Schema, error) {
	if presetName == "" {
		return schema, nil
	}
	return schema.Preset(presetName)
}
