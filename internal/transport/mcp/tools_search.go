package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/search/match"
	"github.com/crmforge/pipedex/internal/domain/search/predicate"
	"github.com/crmforge/pipedex/internal/usecase/envelope"
	"github.com/crmforge/pipedex/internal/usecase/search"
)

func registerSearchTools(s *server.MCPServer, svc *search.Service, logger *zap.Logger) {
	searchTool := mcpgo.NewTool("search_records",
		mcpgo.WithDescription(
			"Search Pipedrive with its own search endpoint. UNRELIABLE for short or "+
				"partial terms: an empty result does not mean the data is absent. When "+
				"nothing comes back, use the suggested alternative tool from the response.",
		),
		mcpgo.WithString("term",
			mcpgo.Required(),
			mcpgo.Description("Free-text search term (at least 2 characters)"),
		),
		mcpgo.WithString("kind",
			mcpgo.Required(),
			mcpgo.Description("Entity kind to search"),
			mcpgo.Enum("deal", "person", "organization", "activity", "note", "lead"),
		),
	)
	s.AddTool(searchTool, handle("search_records", logger, remoteSearchHandler(svc)))

	filterPersons := mcpgo.NewTool("filter_persons",
		mcpgo.WithDescription(
			"List persons and filter them client-side. All given criteria must match "+
				"(AND). String criteria are case-insensitive substring matches. Reliable, "+
				"unlike search_records. Preserves Pipedrive's most-recently-active order.",
		),
		mcpgo.WithString("name", mcpgo.Description("Fragment of the person's name")),
		mcpgo.WithString("email", mcpgo.Description("Fragment of any email address")),
		mcpgo.WithString("phone", mcpgo.Description("Fragment of any phone number")),
		mcpgo.WithString("org_name", mcpgo.Description("Fragment of the organization name")),
		mcpgo.WithNumber("org_id", mcpgo.Description("Exact organization id")),
	)
	s.AddTool(filterPersons, handle("filter_persons", logger, filterPersonsHandler(svc)))

	filterDeals := mcpgo.NewTool("filter_deals",
		mcpgo.WithDescription(
			"List deals and filter them client-side. All given criteria must match (AND).",
		),
		mcpgo.WithString("title", mcpgo.Description("Fragment of the deal title")),
		mcpgo.WithString("status",
			mcpgo.Description("Exact deal status"),
			mcpgo.Enum("open", "won", "lost", "deleted"),
		),
		mcpgo.WithNumber("org_id", mcpgo.Description("Exact organization id")),
	)
	s.AddTool(filterDeals, handle("filter_deals", logger, filterDealsHandler(svc)))

	findPerson := mcpgo.NewTool("find_person",
		mcpgo.WithDescription(
			"Fuzzy-find persons by partial name, company, email and/or phone. Each "+
				"field that matches adds to the record's score (name 10, company 8, "+
				"email 7, phone 6); results come back best first with the reasons they "+
				"matched. At least one field is required.",
		),
		mcpgo.WithString("name", mcpgo.Description("Partial name; matches substrings and word prefixes")),
		mcpgo.WithString("company", mcpgo.Description("Partial organization name")),
		mcpgo.WithString("email", mcpgo.Description("Email fragment")),
		mcpgo.WithString("phone", mcpgo.Description("Phone fragment")),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum results (default 20, max 100)")),
	)
	s.AddTool(findPerson, handle("find_person", logger, findPersonHandler(svc)))
}

func remoteSearchHandler(svc *search.Service) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		term, err := requireString(args, "term")
		if err != nil {
			return nil, err
		}
		kindArg, err := requireString(args, "kind")
		if err != nil {
			return nil, err
		}
		kind, err := domain.ParseEntityKind(kindArg)
		if err != nil {
			return nil, err
		}

		recs, err := svc.RemoteSearch(ctx, kind, term)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return envelope.EmptySearchDiagnostic(term, fallbackFor(kind, term)), nil
		}
		return envelope.ReadResult(kind, recs, []string{"remote search for " + term}, 0), nil
	}
}

// fallbackFor picks the reliable alternative to suggest when the remote
// search comes back empty.
func fallbackFor(kind domain.EntityKind, term string) envelope.Suggestion {
	switch kind {
	case domain.KindPerson:
		return envelope.Suggestion{Tool: "find_person", Args: map[string]any{"name": term}}
	case domain.KindDeal:
		return envelope.Suggestion{Tool: "filter_deals", Args: map[string]any{"title": term}}
	case domain.KindOrganization:
		return envelope.Suggestion{Tool: "filter_persons", Args: map[string]any{"org_name": term}}
	default:
		return envelope.Suggestion{
			Tool: "list_" + kind.Endpoint(),
			Args: map[string]any{"limit": 500},
		}
	}
}

func filterPersonsHandler(svc *search.Service) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var preds []predicate.Predicate

		for _, field := range []string{"name", "email", "phone", "org_name"} {
			if frag := argString(args, field); frag != "" {
				p, err := predicate.NewContains(field, frag)
				if err != nil {
					return nil, err
				}
				preds = append(preds, p)
			}
		}
		if id := argInt(args, "org_id"); id > 0 {
			p, err := predicate.NewNumber("org_id", float64(id))
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}

		set, err := predicate.NewSet(preds...)
		if err != nil {
			return nil, err
		}
		recs, applied, err := svc.FilterRecords(ctx, domain.KindPerson, 0, set)
		if err != nil {
			return nil, err
		}
		return envelope.ReadResult(domain.KindPerson, recs, applied, 0), nil
	}
}

func filterDealsHandler(svc *search.Service) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var preds []predicate.Predicate

		if frag := argString(args, "title"); frag != "" {
			p, err := predicate.NewContains("title", frag)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		if status := argString(args, "status"); status != "" {
			p, err := predicate.NewExact("status", status)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		if id := argInt(args, "org_id"); id > 0 {
			p, err := predicate.NewNumber("org_id", float64(id))
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}

		set, err := predicate.NewSet(preds...)
		if err != nil {
			return nil, err
		}
		recs, applied, err := svc.FilterRecords(ctx, domain.KindDeal, 0, set)
		if err != nil {
			return nil, err
		}
		return envelope.ReadResult(domain.KindDeal, recs, applied, 0), nil
	}
}

func findPersonHandler(svc *search.Service) handlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		q, err := match.NewQuery(
			argString(args, "name"),
			argString(args, "company"),
			argString(args, "email"),
			argString(args, "phone"),
		)
		if err != nil {
			return nil, err
		}

		scored, err := svc.FuzzyFindPersons(ctx, q, argInt(args, "limit"))
		if err != nil {
			return nil, err
		}
		return envelope.MatchResults(scored), nil
	}
}
