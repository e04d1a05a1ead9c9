package rcparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehub/rc-intake/constants"
)

const sampleRC = `REG NO: KA01AB1234
CHASSIS NO: MA3ERLF1S00123456
ENGINE NO: K12MN9876543
OWNER NAME: JOHN DOE
123 MG ROAD
BANGALORE 560001
CHASSIS NO`

func TestExtractFallbackEndToEnd(t *testing.T) {
	rec := ExtractFallback(sampleRC, 78)

	assert.Equal(t, "KA01AB1234", rec.RegNo)
	assert.Equal(t, "MA3ERLF1S00123456", rec.ChassisNo)
	assert.Equal(t, "K12MN9876543", rec.EngineNo)
	assert.Equal(t, "JOHN DOE", rec.OwnerName)
	assert.Equal(t, "123 MG ROAD, BANGALORE 560001", rec.Address)
	assert.Equal(t, float64(78), rec.OCRConfidence)
	assert.False(t, rec.ExtractedDate.IsZero())
}

func TestExtractIsDeterministic(t *testing.T) {
	a := ExtractFallback(sampleRC, 78)
	b := ExtractFallback(sampleRC, 78)
	a.ExtractedDate = b.ExtractedDate
	assert.Equal(t, a, b)

	c := ExtractPrimary(sampleRC, 78)
	d := ExtractPrimary(sampleRC, 78)
	c.ExtractedDate = d.ExtractedDate
	assert.Equal(t, c, d)
}

func TestEveryFieldPresent(t *testing.T) {
	for _, rec := range []Record{
		ExtractPrimary(sampleRC, 50),
		ExtractFallback(sampleRC, 50),
		ExtractFallback("", 50),
	} {
		fields := rec.FieldMap()
		require.Len(t, fields, len(constants.RCFieldKeys))
		for _, key := range constants.RCFieldKeys {
			_, ok := fields[key]
			assert.True(t, ok, "missing field %s", key)
		}
	}
}

func TestConfidencePassthrough(t *testing.T) {
	// out-of-range values are copied verbatim, never clamped
	for _, conf := range []float64{0, 42.5, 100, 250, -5} {
		assert.Equal(t, conf, ExtractPrimary(sampleRC, conf).OCRConfidence)
		assert.Equal(t, conf, ExtractFallback(sampleRC, conf).OCRConfidence)
	}
}

func TestFallbackGuardClause(t *testing.T) {
	for _, text := range []string{"", "12", "  ", "42 99 1000"} {
		rec := ExtractFallback(text, 55)
		assert.True(t, rec.IsEmpty(), "expected empty record for %q", text)
		assert.Equal(t, float64(55), rec.OCRConfidence)
	}
}

func TestChassisLabelMatchBothEngines(t *testing.T) {
	text := "CHASSIS NO: MA3ERLF1S00123456"
	assert.Equal(t, "MA3ERLF1S00123456", ExtractPrimary(text, 90).ChassisNo)
	assert.Equal(t, "MA3ERLF1S00123456", ExtractFallback(text, 90).ChassisNo)
}

func TestLowConfidenceCleanupGating(t *testing.T) {
	text := "C O L O U R : W H I T E"

	low := prepareDefensive(text, 30, LowConfidenceCutoff)
	high := prepareDefensive(text, 60, LowConfidenceCutoff)
	assert.NotEqual(t, low, high, "cleanup must only run below the cutoff")
	assert.Equal(t, "C O L O U R : W H I T E", high)

	// and the gate is visible in the output records too
	noisy := "COLOUR: W H I T E"
	assert.Equal(t, "W H I T E", ExtractFallback(noisy, 60).Colour)
	assert.Equal(t, "", ExtractFallback(noisy, 30).Colour)
}

func TestAddressCascadePriority(t *testing.T) {
	// both an OWNER NAME block and an explicit ADDRESS label: the
	// owner-anchored tier must win
	text := `OWNER NAME: JANE ROE
45 LAKE VIEW ROAD
MYSORE 570001
CHASSIS NO: MB1NACHT12P345678
ADDRESS: OLD AIRPORT ROAD OFFICE`
	rec := ExtractFallback(text, 80)
	assert.Equal(t, "45 LAKE VIEW ROAD, MYSORE 570001", rec.Address)
}

func TestAddressExplicitLabelTier(t *testing.T) {
	text := `REG NO: KA05MH6677
ADDRESS: 12 TEMPLE STREET
HOSKOTE
FUEL: PETROL`
	rec := ExtractFallback(text, 80)
	assert.Equal(t, "12 TEMPLE STREET, HOSKOTE", rec.Address)
}

func TestAddressKeywordTier(t *testing.T) {
	text := `REG NO: KA05MH6677
77 JAYANAGAR 4TH CROSS
BENGALURU
FUEL: PETROL`
	rec := ExtractFallback(text, 80)
	assert.Equal(t, "77 JAYANAGAR 4TH CROSS, BENGALURU", rec.Address)
}

func TestAddressAllTiersFail(t *testing.T) {
	rec := ExtractFallback("REG NO: KA05MH6677\nFUEL: PETROL", 80)
	assert.Equal(t, "", rec.Address)
}

func TestValueOnNextLine(t *testing.T) {
	text := "CHASSIS NO\nMA3ERLF1S00123456\nENGINE NO\nK12MN9876543"
	rec := ExtractFallback(text, 70)
	assert.Equal(t, "MA3ERLF1S00123456", rec.ChassisNo)
	assert.Equal(t, "K12MN9876543", rec.EngineNo)
}

func TestNoColonSameLine(t *testing.T) {
	rec := ExtractFallback("ENGINE NO K12MN9876543", 70)
	assert.Equal(t, "K12MN9876543", rec.EngineNo)
}

func TestLastResortShapeScan(t *testing.T) {
	// no labels at all: identity fields are still recovered by shape
	text := "TRANSPORT DEPARTMENT\nKA01AB1234\nMA3ERLF1S00123456"
	rec := ExtractFallback(text, 70)
	assert.Equal(t, "KA01AB1234", rec.RegNo)
	assert.Equal(t, "MA3ERLF1S00123456", rec.ChassisNo)
}

func TestRefinementCutsAdjacentGarbage(t *testing.T) {
	// the registration-shaped token wins over the raw line fragment
	rec := ExtractFallback("REG NO KA01AB1234 DT 01/02/2020", 70)
	assert.Equal(t, "KA01AB1234", rec.RegNo)

	rec = ExtractFallback("WHEEL BASE: 2450 MM", 70)
	assert.Equal(t, "2450", rec.WheelBase)

	rec = ExtractFallback("SEATING CAPACITY: 5 SEATS", 70)
	assert.Equal(t, "5", rec.Seating)
}

func TestPrimaryStrictBehavior(t *testing.T) {
	rec := ExtractPrimary(sampleRC, 78)
	assert.Equal(t, "KA01AB1234", rec.RegNo)
	assert.Equal(t, "MA3ERLF1S00123456", rec.ChassisNo)
	assert.Equal(t, "JOHN DOE", rec.OwnerName)
	// no ADDRESS label and no recovery tiers in strict mode
	assert.Equal(t, "", rec.Address)
}

func TestPrimaryFirstMatchWins(t *testing.T) {
	text := "REG NO: KA01AB1234\nREG NO: TN09XY9999"
	rec := ExtractPrimary(text, 90)
	assert.Equal(t, "KA01AB1234", rec.RegNo)
}

func TestPrimaryAddressBlock(t *testing.T) {
	text := "ADDRESS: 12 FOO LAYOUT\nSECOND LINE\nMFR: MARUTI"
	rec := ExtractPrimary(text, 90)
	assert.Equal(t, "12 FOO LAYOUT SECOND LINE", rec.Address)
	assert.Equal(t, "MARUTI", rec.Mfr)
}

func TestPrimaryNormalizationIsUnconditional(t *testing.T) {
	// lowercase input, stray disallowed characters, doubled spaces
	rec := ExtractPrimary("chassis  no:  ma3erlf1s00123456 #!", 10)
	assert.Equal(t, "MA3ERLF1S00123456", rec.ChassisNo)
}

func TestPostprocessCollapsesWhitespace(t *testing.T) {
	rec := ExtractFallback("MFR:   MARUTI    SUZUKI  ", 80)
	assert.Equal(t, "MARUTI SUZUKI", rec.Mfr)
}

func TestValidityWindowFields(t *testing.T) {
	text := `REG/FC VALID UPTO: 11/03/2035
TAX UPTO: 31/12/2030
FITNESS UPTO: 11/03/2027
INSURANCE UPTO: 14/08/2026`
	rec := ExtractFallback(text, 85)
	assert.Equal(t, "11/03/2035", rec.RegFcUpto)
	assert.Equal(t, "31/12/2030", rec.TaxUpto)
	assert.Equal(t, "11/03/2027", rec.FitUpto)
	assert.Equal(t, "14/08/2026", rec.InsuranceUpto)
}

func TestCaptionAliases(t *testing.T) {
	// the alternate vocabulary maps onto the canonical fields
	rec := ExtractFallback("COLOR: RED\nMAKER: HONDA", 85)
	assert.Equal(t, "RED", rec.Colour)
	assert.Equal(t, "HONDA", rec.Mfr)
}
