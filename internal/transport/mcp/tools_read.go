package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/usecase/envelope"
	"github.com/crmforge/pipedex/internal/usecase/records"
)

var listableKinds = []domain.EntityKind{
	domain.KindDeal,
	domain.KindPerson,
	domain.KindOrganization,
	domain.KindActivity,
	domain.KindNote,
	domain.KindLead,
}

var gettableKinds = []domain.EntityKind{
	domain.KindDeal,
	domain.KindPerson,
	domain.KindOrganization,
}

func registerReadTools(s *server.MCPServer, svc *records.Service, logger *zap.Logger) {
	for _, kind := range listableKinds {
		name := "list_" + kind.Endpoint()
		tool := mcpgo.NewTool(name,
			mcpgo.WithDescription(fmt.Sprintf(
				"List %s from Pipedrive, most recently active first. Returns up to 'limit' records (default 100, max 500).",
				kind.Endpoint(),
			)),
			mcpgo.WithNumber("limit",
				mcpgo.Description("Maximum number of records to return"),
			),
		)
		s.AddTool(tool, handle(name, logger, listHandler(svc, kind)))
	}

	for _, kind := range gettableKinds {
		name := "get_" + string(kind)
		tool := mcpgo.NewTool(name,
			mcpgo.WithDescription(fmt.Sprintf("Get a single Pipedrive %s by its numeric id.", kind)),
			mcpgo.WithNumber("id",
				mcpgo.Required(),
				mcpgo.Description(fmt.Sprintf("The %s id", kind)),
			),
		)
		s.AddTool(tool, handle(name, logger, getHandler(svc, kind)))
	}
}

func listHandler(svc *records.Service, kind domain.EntityKind) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		recs, err := svc.List(ctx, kind, argInt(args, "limit"))
		if err != nil {
			return nil, err
		}
		return envelope.ReadResult(kind, recs, nil, 0), nil
	}
}

func getHandler(svc *records.Service, kind domain.EntityKind) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireInt64(args, "id")
		if err != nil {
			return nil, err
		}
		rec, err := svc.Get(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		return envelope.SingleResult(kind, rec), nil
	}
}
