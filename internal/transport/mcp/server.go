// Package mcp wires all tool definitions and creates the MCP server
// instance. This is the dispatcher of the system: it owns argument
// schemas and response serialization, and delegates everything else to
// the use case services. No business logic lives here.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/usecase/records"
	"github.com/crmforge/pipedex/internal/usecase/search"
	"github.com/crmforge/pipedex/internal/version"
)

const instructions = `pipedex exposes Pipedrive CRM data as tools.

Reading: the list_* tools return records in Pipedrive's own order
(most recently active first). search_records uses Pipedrive's search
endpoint, which is unreliable for short or partial terms; when it
returns nothing, follow the suggestion in the response instead of
concluding the data is absent. find_person ranks persons client-side
against partial name/company/email/phone fragments and explains every
match, so prefer it when you only know part of a name.

Writing: create_* and update_* change CRM data immediately. Confirm
intent with the user before mutating records.`

// NewServer creates the MCP server with all tools registered.
func NewServer(recordsSvc *records.Service, searchSvc *search.Service, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"pipedex",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	registerReadTools(s, recordsSvc, logger)
	registerSearchTools(s, searchSvc, logger)
	registerWriteTools(s, recordsSvc, logger)

	return s
}
