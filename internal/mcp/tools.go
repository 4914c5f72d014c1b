package mcp

import (
	"context"
	"encoding/base64"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/trainingload/internal/load"
	"github.com/meltforce/trainingload/internal/render"
)

// --- Tool definitions ---

var drillSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":     map[string]any{"type": "string", "description": "Drill name. Rows without a name are ignored."},
		"duration": map[string]any{"type": "number", "description": "Duration in minutes"},
		"exertion": map[string]any{"type": "number", "description": "Rating of perceived exertion, 1-10"},
	},
}

var toolComputeTrainingLoad = mcp.NewTool("compute_training_load",
	mcp.WithDescription("Compute session-RPE training load. Returns per-drill loads (duration x RPE), session totals, session intensity and the load and intensity relative to the match reference, plus display-ready strings."),
	mcp.WithArray("drills", mcp.Required(), mcp.Description("Drills of the session in order"), mcp.Items(drillSchema)),
)

var toolRenderTrainingLoad = mcp.NewTool("render_training_load",
	mcp.WithDescription("Render the training load summary of a session as a PNG image with the drill table, a bar graphic and the summary figures."),
	mcp.WithArray("drills", mcp.Required(), mcp.Description("Drills of the session in order"), mcp.Items(drillSchema)),
	mcp.WithString("language", mcp.Description("Label language. Defaults to en."), mcp.Enum(render.Languages...)),
)

type toolArgs struct {
	Drills   []load.DrillEntry `json:"drills"`
	Language string            `json:"language"`
}

func bindArgs(req mcp.CallToolRequest) (toolArgs, *mcp.CallToolResult) {
	var args toolArgs
	if err := req.BindArguments(&args); err != nil {
		return args, mcp.NewToolResultError("invalid arguments: " + err.Error())
	}
	if args.Drills == nil {
		return args, mcp.NewToolResultError("drills parameter is required")
	}
	return args, nil
}

// --- Tool handlers ---

func (h *handlers) computeTrainingLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := bindArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	res, err := h.backend.Summarize(ctx, args.Drills)
	if err != nil {
		h.log.Warn("mcp compute_training_load", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) renderTrainingLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := bindArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	img, err := h.backend.RenderPNG(ctx, args.Drills, args.Language)
	if err != nil {
		h.log.Warn("mcp render_training_load", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultImage("Training load summary", base64.StdEncoding.EncodeToString(img), "image/png"), nil
}
