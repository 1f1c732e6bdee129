package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	logpkg "github.com/crmforge/pipedex/internal/logger"
	"github.com/crmforge/pipedex/internal/metrics"
)

// handlerFunc is the tool-layer contract: raw arguments in, a
// JSON-serializable payload (usually an envelope.Envelope) or error out.
type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// handle wraps a tool handler with the per-invocation plumbing: an
// invocation id, a scoped logger in the context, metrics, a canonical log
// line, and serialization of the payload or error into the MCP result.
// Tool failures are returned as tool error results, not protocol errors.
func handle(name string, logger *zap.Logger, fn handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		start := time.Now()
		log := logger.With(
			zap.String("tool", name),
			zap.String("invocation_id", uuid.NewString()),
		)
		ctx = logpkg.ContextWithLogger(ctx, log)

		payload, err := fn(ctx, req.GetArguments())

		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ToolInvocationsTotal.WithLabelValues(name, status).Inc()
		metrics.ToolInvocationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		// Canonical log line, one per invocation.
		log.Info("tool_invocation",
			zap.String("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)

		if err != nil {
			return mcpgo.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
		}

		body, mErr := json.MarshalIndent(payload, "", "  ")
		if mErr != nil {
			return mcpgo.NewToolResultError(fmt.Sprintf("%s failed: encode response: %v", name, mErr)), nil
		}
		return mcpgo.NewToolResultText(string(body)), nil
	}
}
