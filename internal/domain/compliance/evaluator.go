package compliance

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
)

var hundred = decimal.NewFromInt(100)

// Input is the officer-supplied data needed to evaluate one item
type Input struct {
	Category             string
	FinalPrice           float64
	ForeignPrice         float64
	DomesticValuePercent float64
}

// Result holds the computed percentages, rounded to two decimals for storage
type Result struct {
	LocalContentPercent float64
	TotalPercent        float64
	IsCompliant         bool
	Rule                Rule
}

// Evaluator computes local-content compliance for items
type Evaluator struct {
	rules *RuleTable
}

// NewEvaluator creates an evaluator over the given rule table
func NewEvaluator(rules *RuleTable) *Evaluator {
	if rules == nil {
		rules = DefaultRuleTable()
	}
	return &Evaluator{rules: rules}
}

// Rules returns the table this evaluator reads
func (e *Evaluator) Rules() *RuleTable {
	return e.rules
}

// Evaluate computes local content and compliance for one item.
// Comparisons use the unrounded values; only the returned percentages are rounded.
func (e *Evaluator) Evaluate(in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	rule, ok := e.rules.Lookup(in.Category)
	if !ok {
		return Result{}, apperr.InvalidCategory(in.Category)
	}

	final := decimal.NewFromFloat(in.FinalPrice)
	foreign := decimal.NewFromFloat(in.ForeignPrice)
	domestic := decimal.NewFromFloat(in.DomesticValuePercent)

	local := LocalContent(final, foreign)
	total := local.Add(domestic)

	meetsLocal := local.GreaterThanOrEqual(decimal.NewFromFloat(rule.MinLocalContentPercent))
	meetsTotal := total.GreaterThanOrEqual(decimal.NewFromFloat(rule.MinTotalPercent))

	return Result{
		LocalContentPercent: local.Round(2).InexactFloat64(),
		TotalPercent:        total.Round(2).InexactFloat64(),
		IsCompliant:         meetsLocal && meetsTotal,
		Rule:                rule,
	}, nil
}

// LocalContent returns (final - foreign) / final * 100 at full precision.
// Callers must ensure final is positive.
func LocalContent(final, foreign decimal.Decimal) decimal.Decimal {
	return final.Sub(foreign).Div(final).Mul(hundred)
}

func validateInput(in Input) error {
	for _, v := range []float64{in.FinalPrice, in.ForeignPrice, in.DomesticValuePercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperr.Validation("prices and percentages must be finite numbers")
		}
	}
	if in.FinalPrice <= 0 {
		return apperr.Validation("final price must be greater than zero")
	}
	if in.ForeignPrice < 0 {
		return apperr.Validation("foreign price must not be negative")
	}
	if in.ForeignPrice > in.FinalPrice {
		return apperr.Validation("foreign price %.2f exceeds final price %.2f", in.ForeignPrice, in.FinalPrice)
	}
	if in.DomesticValuePercent < 0 || in.DomesticValuePercent > 100 {
		return apperr.Validation("domestic value percent must be between 0 and 100")
	}
	return nil
}
