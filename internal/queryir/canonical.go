package queryir

import (
	"github.com/roach88/donorql/internal/ir"
)

// Canonical returns a plain map form of the plan, suitable for canonical
// JSON, fingerprinting and CLI output. Predicates carry a "kind" tag.
func (p *Plan) Canonical() map[string]any {
	fields := make([]any, len(p.Projection))
	for i, f := range p.Projection {
		m := map[string]any{
			"source": string(f.Source),
			"column": f.Column,
			"header": f.Header,
		}
		if f.Aggregate != AggregateNone {
			m["aggregate"] = string(f.Aggregate)
		}
		fields[i] = m
	}

	preds := make([]any, len(p.Predicates))
	for i, pred := range p.Predicates {
		preds[i] = canonicalPredicate(pred)
	}

	out := map[string]any{
		"table":      string(p.Table),
		"projection": fields,
		"predicates": preds,
		"limit":      p.Limit,
		"aggregate":  p.HasAggregate(),
	}
	if p.Join != nil {
		out["join"] = map[string]any{
			"table": string(p.Join.Table),
			"kind":  string(p.Join.Kind),
		}
	}
	if p.OrderBy != nil {
		order := map[string]any{"descending": p.OrderBy.Descending}
		if p.OrderBy.Aggregate {
			order["aggregate"] = true
		} else {
			order["column"] = ColumnRef{Table: p.OrderBy.Source, Column: p.OrderBy.Column}.String()
		}
		out["order_by"] = order
	}
	return out
}

func canonicalPredicate(pred Predicate) map[string]any {
	switch pr := pred.(type) {
	case Compare:
		return map[string]any{
			"kind":   "compare",
			"column": pr.Ref.String(),
			"op":     string(pr.Op),
			"value":  pr.Value.Value(),
		}
	case Like:
		return canonicalLike(pr)
	case NullCheck:
		op := "isnull"
		if pr.Negate {
			op = "notnull"
		}
		return map[string]any{
			"kind":   "null",
			"column": pr.Ref.String(),
			"op":     op,
		}
	case AnyLike:
		alts := make([]any, len(pr.Alternatives))
		for i, alt := range pr.Alternatives {
			alts[i] = canonicalLike(alt)
		}
		return map[string]any{
			"kind":         "any_like",
			"column":       pr.Ref.String(),
			"alternatives": alts,
		}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func canonicalLike(l Like) map[string]any {
	op := "like"
	if l.CaseInsensitive {
		op = "ilike"
	}
	return map[string]any{
		"kind":    "like",
		"column":  l.Ref.String(),
		"op":      op,
		"pattern": l.Pattern,
	}
}

// Fingerprint returns a stable content hash of the plan.
// Structurally identical plans always share a fingerprint.
func (p *Plan) Fingerprint() (string, error) {
	return ir.HashCanonical(ir.DomainPlan, p.Canonical())
}
