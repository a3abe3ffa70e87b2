package compliance

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
)

func TestEvaluate_ElectronicsCompliant(t *testing.T) {
	e := NewEvaluator(DefaultRuleTable())

	res, err := e.Evaluate(Input{
		Category:             CategoryElectronicsTelematics,
		FinalPrice:           15000000,
		ForeignPrice:         5000000,
		DomesticValuePercent: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 66.67, res.LocalContentPercent)
	assert.Equal(t, 86.67, res.TotalPercent)
	assert.True(t, res.IsCompliant)
	assert.Equal(t, 25.0, res.Rule.MinLocalContentPercent)
}

func TestEvaluate_ElectronicsBelowLocalMinimum(t *testing.T) {
	e := NewEvaluator(nil)

	res, err := e.Evaluate(Input{
		Category:     CategoryElectronicsTelematics,
		FinalPrice:   10000000,
		ForeignPrice: 9000000,
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.LocalContentPercent)
	assert.Equal(t, 10.0, res.TotalPercent)
	assert.False(t, res.IsCompliant)
}

func TestEvaluate_ComplianceRequiresBothThresholds(t *testing.T) {
	e := NewEvaluator(DefaultRuleTable())

	tests := []struct {
		name      string
		input     Input
		compliant bool
	}{
		{
			name:      "health equipment below local minimum",
			input:     Input{Category: CategoryHealthEquipment, FinalPrice: 100, ForeignPrice: 70, DomesticValuePercent: 5},
			compliant: false,
		},
		{
			name:      "health equipment at exact local minimum",
			input:     Input{Category: CategoryHealthEquipment, FinalPrice: 100, ForeignPrice: 40},
			compliant: true,
		},
		{
			name:      "agricultural machinery one point under local minimum",
			input:     Input{Category: CategoryAgriculturalMachinery, FinalPrice: 100, ForeignPrice: 58, DomesticValuePercent: 40},
			compliant: false,
		},
		{
			name:      "general products local met, total reached through domestic value",
			input:     Input{Category: CategoryGeneralProducts, FinalPrice: 100, ForeignPrice: 70, DomesticValuePercent: 10},
			compliant: true,
		},
		{
			name:      "general products local met, total short",
			input:     Input{Category: CategoryGeneralProducts, FinalPrice: 100, ForeignPrice: 70, DomesticValuePercent: 9.99},
			compliant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.compliant, res.IsCompliant)
		})
	}
}

func TestEvaluate_ComparesUnroundedValues(t *testing.T) {
	rules := NewRuleTable(Rule{
		Category:               "custom",
		MinLocalContentPercent: 66.67,
		MinTotalPercent:        0,
	})
	e := NewEvaluator(rules)

	// 66.666... rounds to 66.67 for display but is still below the threshold
	res, err := e.Evaluate(Input{Category: "custom", FinalPrice: 3, ForeignPrice: 1})
	require.NoError(t, err)

	assert.Equal(t, 66.67, res.LocalContentPercent)
	assert.False(t, res.IsCompliant)
}

func TestEvaluate_ValidationErrors(t *testing.T) {
	e := NewEvaluator(DefaultRuleTable())

	tests := []struct {
		name  string
		input Input
	}{
		{"zero final price", Input{Category: CategoryGeneralProducts, FinalPrice: 0}},
		{"negative final price", Input{Category: CategoryGeneralProducts, FinalPrice: -5}},
		{"foreign exceeds final", Input{Category: CategoryGeneralProducts, FinalPrice: 100, ForeignPrice: 101}},
		{"negative foreign", Input{Category: CategoryGeneralProducts, FinalPrice: 100, ForeignPrice: -1}},
		{"domestic above 100", Input{Category: CategoryGeneralProducts, FinalPrice: 100, DomesticValuePercent: 100.5}},
		{"NaN price", Input{Category: CategoryGeneralProducts, FinalPrice: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Evaluate(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.False(t, errors.Is(err, apperr.ErrInvalidCategory))
		})
	}
}

func TestEvaluate_UnknownCategory(t *testing.T) {
	e := NewEvaluator(DefaultRuleTable())

	_, err := e.Evaluate(Input{Category: "furniture", FinalPrice: 100, ForeignPrice: 10})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidCategory)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestEvaluate_LocalContentWithinTolerance(t *testing.T) {
	e := NewEvaluator(DefaultRuleTable())

	prices := [][2]float64{
		{1, 0}, {3, 1}, {7, 3}, {999999.99, 123456.78}, {15000000, 5000000}, {10, 10},
	}
	for _, p := range prices {
		res, err := e.Evaluate(Input{Category: CategoryGeneralProducts, FinalPrice: p[0], ForeignPrice: p[1]})
		require.NoError(t, err)

		expected := (p[0] - p[1]) / p[0] * 100
		assert.InDelta(t, expected, res.LocalContentPercent, 0.01)
	}
}

func TestLocalContent_FullPrecision(t *testing.T) {
	lc := LocalContent(decimal.NewFromInt(3), decimal.NewFromInt(1))

	assert.True(t, lc.GreaterThan(decimal.RequireFromString("66.666")))
	assert.True(t, lc.LessThan(decimal.RequireFromString("66.667")))
}

func TestRuleTable_Thresholds(t *testing.T) {
	table := DefaultRuleTable()

	expected := map[string][3]float64{
		CategoryHealthEquipment:       {60, 40, 40},
		CategoryAgriculturalMachinery: {43, 40, 40},
		CategoryElectronicsTelematics: {25, 40, 40},
		CategoryGeneralProducts:       {25, 40, 40},
	}

	for category, want := range expected {
		rule, ok := table.Lookup(category)
		require.True(t, ok, category)
		assert.Equal(t, want[0], rule.MinLocalContentPercent, category)
		assert.Equal(t, want[1], rule.MinDomesticValuePercent, category)
		assert.Equal(t, want[2], rule.MinTotalPercent, category)
	}

	rules := table.Rules()
	require.Len(t, rules, 4)
	assert.Equal(t, CategoryHealthEquipment, rules[0].Category)
	assert.Equal(t, CategoryGeneralProducts, rules[3].Category)
}
