package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/usecase/envelope"
	"github.com/crmforge/pipedex/internal/usecase/records"
)

func registerWriteTools(s *server.MCPServer, svc *records.Service, logger *zap.Logger) {
	createDeal := mcpgo.NewTool("create_deal",
		mcpgo.WithDescription("Create a new deal in Pipedrive."),
		mcpgo.WithString("title",
			mcpgo.Required(),
			mcpgo.Description("Deal title"),
		),
		mcpgo.WithNumber("value", mcpgo.Description("Monetary value of the deal")),
		mcpgo.WithString("currency", mcpgo.Description("Currency code, e.g. EUR")),
		mcpgo.WithNumber("person_id", mcpgo.Description("Id of the person the deal is tied to")),
		mcpgo.WithNumber("org_id", mcpgo.Description("Id of the organization the deal is tied to")),
		mcpgo.WithString("status",
			mcpgo.Description("Deal status"),
			mcpgo.Enum("open", "won", "lost"),
		),
	)
	s.AddTool(createDeal, handle("create_deal", logger, createHandler(
		svc, domain.KindDeal, "title",
		"value", "currency", "person_id", "org_id", "status",
	)))

	updateDeal := mcpgo.NewTool("update_deal",
		mcpgo.WithDescription("Update an existing deal. Only the given fields change."),
		mcpgo.WithNumber("id",
			mcpgo.Required(),
			mcpgo.Description("Id of the deal to update"),
		),
		mcpgo.WithString("title", mcpgo.Description("New deal title")),
		mcpgo.WithNumber("value", mcpgo.Description("New monetary value")),
		mcpgo.WithString("currency", mcpgo.Description("Currency code, e.g. EUR")),
		mcpgo.WithString("status",
			mcpgo.Description("New deal status"),
			mcpgo.Enum("open", "won", "lost", "deleted"),
		),
	)
	s.AddTool(updateDeal, handle("update_deal", logger, updateHandler(
		svc, domain.KindDeal,
		"title", "value", "currency", "status",
	)))

	createPerson := mcpgo.NewTool("create_person",
		mcpgo.WithDescription("Create a new person (contact) in Pipedrive."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Full name of the person"),
		),
		mcpgo.WithString("email", mcpgo.Description("Primary email address")),
		mcpgo.WithString("phone", mcpgo.Description("Primary phone number")),
		mcpgo.WithNumber("org_id", mcpgo.Description("Id of the organization the person belongs to")),
	)
	s.AddTool(createPerson, handle("create_person", logger, createHandler(
		svc, domain.KindPerson, "name",
		"email", "phone", "org_id",
	)))

	updatePerson := mcpgo.NewTool("update_person",
		mcpgo.WithDescription("Update an existing person. Only the given fields change."),
		mcpgo.WithNumber("id",
			mcpgo.Required(),
			mcpgo.Description("Id of the person to update"),
		),
		mcpgo.WithString("name", mcpgo.Description("New full name")),
		mcpgo.WithString("email", mcpgo.Description("New primary email address")),
		mcpgo.WithString("phone", mcpgo.Description("New primary phone number")),
		mcpgo.WithNumber("org_id", mcpgo.Description("New organization id")),
	)
	s.AddTool(updatePerson, handle("update_person", logger, updateHandler(
		svc, domain.KindPerson,
		"name", "email", "phone", "org_id",
	)))

	createOrg := mcpgo.NewTool("create_organization",
		mcpgo.WithDescription("Create a new organization in Pipedrive."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Organization name"),
		),
		mcpgo.WithString("address", mcpgo.Description("Postal address")),
	)
	s.AddTool(createOrg, handle("create_organization", logger, createHandler(
		svc, domain.KindOrganization, "name",
		"address",
	)))

	createNote := mcpgo.NewTool("create_note",
		mcpgo.WithDescription("Attach a note to a deal, person or organization."),
		mcpgo.WithString("content",
			mcpgo.Required(),
			mcpgo.Description("Note body (HTML allowed)"),
		),
		mcpgo.WithNumber("deal_id", mcpgo.Description("Id of the deal to attach to")),
		mcpgo.WithNumber("person_id", mcpgo.Description("Id of the person to attach to")),
		mcpgo.WithNumber("org_id", mcpgo.Description("Id of the organization to attach to")),
	)
	s.AddTool(createNote, handle("create_note", logger, createHandler(
		svc, domain.KindNote, "content",
		"deal_id", "person_id", "org_id",
	)))

	createLead := mcpgo.NewTool("create_lead",
		mcpgo.WithDescription("Create a new lead. A lead must point at a person or organization."),
		mcpgo.WithString("title",
			mcpgo.Required(),
			mcpgo.Description("Lead title"),
		),
		mcpgo.WithNumber("person_id", mcpgo.Description("Id of the linked person")),
		mcpgo.WithNumber("organization_id", mcpgo.Description("Id of the linked organization")),
	)
	s.AddTool(createLead, handle("create_lead", logger, createHandler(
		svc, domain.KindLead, "title",
		"person_id", "organization_id",
	)))
}

// createHandler builds a creation handler: the required field is validated
// here, optional fields are copied through only when supplied.
func createHandler(svc *records.Service, kind domain.EntityKind, required string, optional ...string) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		val, err := requireString(args, required)
		if err != nil {
			return nil, err
		}
		fields := map[string]any{required: val}
		setIfPresent(fields, args, optional...)

		rec, err := svc.Create(ctx, kind, fields)
		if err != nil {
			return nil, err
		}
		return envelope.SingleResult(kind, rec), nil
	}
}

func updateHandler(svc *records.Service, kind domain.EntityKind, updatable ...string) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireInt64(args, "id")
		if err != nil {
			return nil, err
		}
		fields := map[string]any{}
		setIfPresent(fields, args, updatable...)

		rec, err := svc.Update(ctx, kind, id, fields)
		if err != nil {
			return nil, err
		}
		return envelope.SingleResult(kind, rec), nil
	}
}
