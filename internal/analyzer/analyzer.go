package analyzer

import (
	"context"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

type Analyzer interface {
	Analyze(ctx context.Context, docType models.DocumentType, text string) (*models.AnalysisResult, error)
}

type documentAnalyzer struct {
	client ModelClient
	logger *utils.Logger
}

func NewAnalyzer(client ModelClient, logger *utils.Logger) Analyzer {
	return &documentAnalyzer{
		client: client,
		logger: logger,
	}
}

// Analyze builds the prompt, calls the model once and validates the output.
func (a *documentAnalyzer) Analyze(ctx context.Context, docType models.DocumentType, text string) (*models.AnalysisResult, error) {
	prompt := BuildPrompt(docType, text)

	raw, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, dropped, err := validate(raw)
	if err != nil {
		a.logger.Error("Failed to parse model response", "error", err, "length", len(raw))
		return nil, err
	}
	if len(dropped) > 0 {
		a.logger.Warn("Model response fields dropped", "dropped", dropped)
	}

	return result, nil
}
