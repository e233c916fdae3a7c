package compiler

import (
	"regexp"
	"strings"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/queryir"
)

const identPattern = `[A-Za-z_][A-Za-z0-9_]*`

var (
	// SUM([donations.]amount) [[AS] alias]
	sumItemPattern = regexp.MustCompile(
		`(?i)^SUM ?\( ?(?:(` + identPattern + `)\.)?(` + identPattern + `) ?\)(?: (?:AS )?(.+))?$`)

	// [table.]column [[AS] alias]
	columnItemPattern = regexp.MustCompile(
		`(?i)^(?:(` + identPattern + `)\.)?(` + identPattern + `)(?: (?:AS )?(.+))?$`)

	bareAliasPattern = regexp.MustCompile(`^` + identPattern + `$`)
)

// DefaultTotalHeader is the header of an unaliased SUM.
const DefaultTotalHeader = "Total Donation"

// parseSelectList parses the projection and enforces the joined-report
// column rules.
func (p *parser) parseSelectList(list string) error {
	if list == "" {
		return newError(ErrCodeUnsupportedSelect, list, "empty SELECT list")
	}
	if first, _, _ := strings.Cut(list, " "); strings.EqualFold(first, "DISTINCT") {
		return newError(ErrCodeUnsupportedSelect, list, "DISTINCT is not supported")
	}

	for _, item := range splitCommas(list) {
		field, err := p.parseSelectItem(item)
		if err != nil {
			return err
		}
		p.plan.Projection = append(p.plan.Projection, field)
	}

	return p.checkProjectionRules()
}

func (p *parser) parseSelectItem(item string) (queryir.Field, error) {
	if item == "" {
		return queryir.Field{}, newError(ErrCodeUnsupportedSelect, item, "empty SELECT item")
	}
	if item == "*" || strings.HasSuffix(item, ".*") {
		return queryir.Field{}, newError(ErrCodeUnsupportedSelect, item, "SELECT * is not supported; list columns explicitly")
	}

	if m := sumItemPattern.FindStringSubmatch(item); m != nil {
		return p.parseSumItem(item, m[1], m[2], m[3])
	}
	if strings.Contains(item, "(") {
		return queryir.Field{}, newError(ErrCodeUnsupportedSelect, item, "only SUM(donations.amount) is supported as a function")
	}

	m := columnItemPattern.FindStringSubmatch(item)
	if m == nil {
		return queryir.Field{}, newError(ErrCodeUnsupportedSelect, item, "unsupported SELECT expression")
	}

	ref, err := p.resolveColumn(m[1], m[2], item)
	if err != nil {
		return queryir.Field{}, err
	}
	if p.plan.JoinsPrimaryIntoSecondary() && ref.Table == catalog.Donations && ref.Column == catalog.DonationForeignKey {
		return queryir.Field{}, columnError(ErrCodeColumnForbidden, string(ref.Table), ref.Column, item,
			"donations.donor_id may not be selected in joined reports; select donors.display_name and donors.email instead")
	}

	field := queryir.Field{Source: ref.Table, Column: ref.Column, Header: ref.Column}
	if m[3] != "" {
		alias, err := parseAlias(m[3], item)
		if err != nil {
			return queryir.Field{}, err
		}
		field.Header = alias
		field.Aliased = true
	}
	return field, nil
}

func (p *parser) parseSumItem(item, qualifier, column, alias string) (queryir.Field, error) {
	if qualifier != "" {
		if t, ok := catalog.ParseTable(qualifier); !ok || t != catalog.Donations {
			return queryir.Field{}, newError(ErrCodeUnsupportedAggregate, item, "SUM only applies to donations.amount")
		}
	}
	if !strings.EqualFold(column, catalog.DonationAmount) {
		return queryir.Field{}, newError(ErrCodeUnsupportedAggregate, item, "SUM only applies to donations.amount")
	}
	if p.plan.Join == nil {
		return queryir.Field{}, newError(ErrCodeUnsupportedAggregate, item,
			"SUM requires JOIN donors ON %s", catalog.JoinCondition())
	}
	if p.plan.HasAggregate() {
		return queryir.Field{}, newError(ErrCodeUnsupportedAggregate, item, "only one SUM is supported")
	}

	field := queryir.Field{
		Source:    catalog.Donations,
		Column:    catalog.DonationAmount,
		Header:    DefaultTotalHeader,
		Aggregate: queryir.AggregateSum,
	}
	if alias != "" {
		a, err := parseAlias(alias, item)
		if err != nil {
			return queryir.Field{}, err
		}
		field.Header = a
		field.Aliased = true
	}
	return field, nil
}

// parseAlias accepts a bare identifier or a quoted alias.
func parseAlias(alias, item string) (string, error) {
	alias = strings.TrimSpace(alias)
	if bareAliasPattern.MatchString(alias) {
		return alias, nil
	}
	if a, ok := unquoteAlias(alias); ok && strings.TrimSpace(a) != "" {
		return a, nil
	}
	return "", newError(ErrCodeUnsupportedSelect, item, "invalid alias %s", alias)
}

// checkProjectionRules enforces the rules that span the whole projection.
func (p *parser) checkProjectionRules() error {
	plan := p.plan

	if plan.HasAggregate() {
		for _, f := range plan.Projection {
			if f.Aggregate == queryir.AggregateNone && f.Source != catalog.Donors {
				return newError(ErrCodeUnsupportedAggregate, f.Ref().String(),
					"%s must be aggregated; only donors columns may accompany SUM", f.Ref())
			}
		}
	}

	if plan.JoinsPrimaryIntoSecondary() {
		for _, col := range []string{catalog.DonorName, catalog.DonorEmail} {
			if !projects(plan, catalog.Donors, col) {
				return columnError(ErrCodeMissingRequiredColumn, string(catalog.Donors), col, "SELECT",
					"joined reports must select donors.%s so rows identify the donor", col)
			}
		}
	}
	return nil
}

func projects(plan *queryir.Plan, table catalog.Table, column string) bool {
	for _, f := range plan.Projection {
		if f.Source == table && f.Column == column && f.Aggregate == queryir.AggregateNone {
			return true
		}
	}
	return false
}
