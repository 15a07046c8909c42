// Package query parses AIP-160 filter and AIP-132 order_by expressions into
// collection view inputs.
//
// Filters are restricted to what a faceted view can express: equality on a
// declared facet, OR between values of the same facet, and AND between
// different facets. For example:
//
//	status = "pending" OR status = "processed" AND royalty_share = "10-20"
//
// AIP-160 binds OR tighter than AND, so the example selects pending or
// processed items in the 10-20 bucket.
package query

import (
	"fmt"
	"strings"

	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"go.einride.tech/aip/filtering"
	"go.einride.tech/aip/ordering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Declarations returns the filter declarations for schema's facets. Every
// facet is a string identifier; range facets compare against bucket labels.
func Declarations[E any](schema *collection.Schema[E]) (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, name := range schema.FacetNames() {
		opts = append(opts, filtering.DeclareIdent(name, filtering.TypeString))
	}
	return filtering.NewDeclarations(opts...)
}

// ParseFilter parses an AIP-160 filter into facet filters. An empty filter
// selects everything.
func ParseFilter[E any](filter string, schema *collection.Schema[E]) (collection.Filters, error) {
	if strings.TrimSpace(filter) == "" {
		return collection.Filters{}, nil
	}
	if schema == nil {
		return nil, apperrors.E(apperrors.KindValidation, "view schema is required")
	}
	decls, err := Declarations(schema)
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filter, decls)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "parse filter", err)
	}
	out := collection.Filters{}
	if err := conjunction(parsed.CheckedExpr.GetExpr(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseOrderBy parses an AIP-132 order_by with exactly one field declared as
// a sort key in schema. An empty order_by keeps insertion order.
func ParseOrderBy[E any](orderBy string, schema *collection.Schema[E]) (collection.SortSpec, error) {
	if strings.TrimSpace(orderBy) == "" {
		return collection.SortSpec{}, nil
	}
	var parsed ordering.OrderBy
	if err := parsed.UnmarshalString(orderBy); err != nil {
		return collection.SortSpec{}, apperrors.Wrap(apperrors.KindValidation, "parse order_by", err)
	}
	if len(parsed.Fields) != 1 {
		return collection.SortSpec{}, apperrors.E(apperrors.KindValidation, fmt.Sprintf("order_by takes exactly one field, got %d", len(parsed.Fields)))
	}
	field := parsed.Fields[0]
	if schema != nil {
		known := false
		for _, name := range schema.SortFields() {
			if name == field.Path {
				known = true
				break
			}
		}
		if !known {
			return collection.SortSpec{}, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown sort field %q", field.Path))
		}
	}
	return collection.SortSpec{Field: field.Path, Desc: field.Desc}, nil
}

func conjunction(e *expr.Expr, out collection.Filters) error {
	if call := e.GetCallExpr(); call != nil {
		switch call.GetFunction() {
		case "_&&_", filtering.FunctionAnd:
			for _, arg := range call.GetArgs() {
				if err := conjunction(arg, out); err != nil {
					return err
				}
			}
			return nil
		}
	}
	facet, values, err := disjunction(e)
	if err != nil {
		return err
	}
	if _, dup := out[facet]; dup {
		return apperrors.E(apperrors.KindValidation, fmt.Sprintf("facet %q is constrained twice; use OR within one facet", facet))
	}
	out[facet] = values
	return nil
}

func disjunction(e *expr.Expr) (string, []string, error) {
	call := e.GetCallExpr()
	if call == nil {
		return "", nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unsupported filter term %T", e.GetExprKind()))
	}
	switch call.GetFunction() {
	case "_||_", filtering.FunctionOr:
		var (
			facet  string
			values []string
		)
		for _, arg := range call.GetArgs() {
			name, more, err := disjunction(arg)
			if err != nil {
				return "", nil, err
			}
			if facet != "" && name != facet {
				return "", nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("OR joins different facets %q and %q", facet, name))
			}
			facet = name
			values = append(values, more...)
		}
		return facet, values, nil
	case "_==_", filtering.FunctionEquals:
		return equality(call.GetArgs())
	default:
		return "", nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unsupported filter function %s", call.GetFunction()))
	}
}

func equality(args []*expr.Expr) (string, []string, error) {
	if len(args) != 2 {
		return "", nil, apperrors.E(apperrors.KindValidation, "comparison requires 2 arguments")
	}
	ident := args[0].GetIdentExpr()
	if ident == nil {
		return "", nil, apperrors.E(apperrors.KindValidation, "left side of a comparison must be a facet name")
	}
	value, ok := args[1].GetConstExpr().GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return "", nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("facet %q compares against a quoted string", ident.GetName()))
	}
	return ident.GetName(), []string{value.StringValue}, nil
}

// Apply parses filter and orderBy and evaluates them against store's current
// snapshot, returning the matching entities in view order.
func Apply[E collection.Entity](store *collection.Store[E], schema *collection.Schema[E], filter string, orderBy string) ([]E, error) {
	filters, err := ParseFilter(filter, schema)
	if err != nil {
		return nil, err
	}
	spec, err := ParseOrderBy(orderBy, schema)
	if err != nil {
		return nil, err
	}
	ids, err := store.View(schema, filters, spec)
	if err != nil {
		return nil, err
	}
	return store.Resolve(ids), nil
}
