package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(b Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("trainingload", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Session-RPE training load calculator. Pass the drills of one training session (name, duration in minutes, exertion on the 1-10 RPE scale) to get per-drill loads, session totals and a comparison against the match reference of 80 minutes at RPE 7."),
	)

	h := &handlers{backend: b, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolComputeTrainingLoad, Handler: h.computeTrainingLoad},
		server.ServerTool{Tool: toolRenderTrainingLoad, Handler: h.renderTrainingLoad},
	)

	s.AddResources(
		server.ServerResource{Resource: resMatchReference, Handler: h.matchReference},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	backend Backend
	log     *slog.Logger
}
