package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/trainingload/internal/load"
)

// --- Resource definitions ---

var resMatchReference = mcp.NewResource(
	"trainingload://match_reference",
	"Match Reference",
	mcp.WithResourceDescription("The match session that training load is compared with: duration, intensity and load"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) matchReference(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ref := load.DefaultMatchReference
	data, err := json.Marshal(map[string]float64{
		"duration":  ref.Duration,
		"intensity": ref.Intensity,
		"load":      ref.Load(),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
