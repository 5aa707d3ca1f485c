package generator

import (
	"context"
	"fmt"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/pkg/dify"
)

// Dify runs a Dify workflow with the profile as inputs.
type Dify struct {
	client     *dify.Client
	workflowID string
	mode       dify.ResponseMode
}

// NewDify creates a Dify generator.
func NewDify(cfg Config) (*Dify, error) {
	client, err := dify.New(dify.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		WorkflowID: cfg.WorkflowID,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	mode := dify.ModeBlocking
	if cfg.Stream {
		mode = dify.ModeStreaming
	}

	return &Dify{client: client, workflowID: cfg.WorkflowID, mode: mode}, nil
}

// Generate implements Generator.
func (d *Dify) Generate(ctx context.Context, req Request) (*Output, error) {
	run, err := d.client.Run(ctx, dify.Request{
		Inputs: req.Profile.Inputs(),
		User:   req.User,
		Mode:   d.mode,
	})
	if err != nil {
		return nil, fmt.Errorf("dify workflow failed: %w", err)
	}

	logger.Debug("dify workflow finished",
		"status", run.StatusCode,
		"mode", run.Mode,
		"duration", run.Duration)

	return &Output{
		Response:   run.Response,
		StatusCode: run.StatusCode,
		Endpoint:   run.Endpoint,
		Model:      d.Model(),
		Duration:   run.Duration,
	}, nil
}

// Name returns the generator identifier.
func (d *Dify) Name() string {
	return "dify"
}

// Model returns the workflow ID, or "workflow" when the server picks it.
func (d *Dify) Model() string {
	if d.workflowID != "" {
		return d.workflowID
	}
	return "workflow"
}

var _ Generator = (*Dify)(nil)
