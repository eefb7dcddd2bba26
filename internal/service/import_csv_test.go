package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvRow(overrides map[int]string) []string {
	row := []string{
		"ACME", "Acme Manufacturing",
		"Plant 1", "P1", "Springfield",
		"Assembly", "Line A",
		"Widget Final Assembly",
		"", "",
		"ASM-001", "Attach housing", "1.25",
		"", "", "",
		"", "", "",
		"",
	}
	for col, val := range overrides {
		row[col] = val
	}
	return row
}

func TestParseStandardsCSV_TemplateRoundTrips(t *testing.T) {
	records, err := parseStandardsCSV(TemplateCSV())

	require.NoError(t, err)
	require.Len(t, records, 1)

	errs, warnings := validateRow(records[0])
	assert.Empty(t, errs, "template example row must validate cleanly")
	assert.Empty(t, warnings)
}

func TestParseStandardsCSV_RejectsHeaderMismatch(t *testing.T) {
	bad := strings.Replace(TemplateCSV(), "Organization Code", "Org Code", 1)

	_, err := parseStandardsCSV(bad)
	assert.Error(t, err)
}

func TestParseStandardsCSV_RejectsWrongColumnCount(t *testing.T) {
	text := strings.Join(csvHeader, ",") + "\nACME,only,three\n"

	_, err := parseStandardsCSV(text)
	assert.Error(t, err)
}

func TestParseStandardsCSV_RejectsEmptyFile(t *testing.T) {
	_, err := parseStandardsCSV("")
	assert.Error(t, err)
}

func TestParseStandardsCSV_HeaderIsCaseInsensitive(t *testing.T) {
	lowered := strings.ToLower(strings.Join(csvHeader, ",")) + "\n"

	records, err := parseStandardsCSV(lowered)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestValidateRow_RequiredFields(t *testing.T) {
	errs, _ := validateRow(csvRow(map[int]string{
		colOrgCode:      "",
		colStandardName: "  ",
	}))

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "organization code")
	assert.Contains(t, errs[1], "standard name")
}

func TestValidateRow_UomRules(t *testing.T) {
	t.Run("no entries at all", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{10: "", 11: "", 12: ""}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "at least one UOM entry")
	})

	t.Run("value without code", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{13: "", 14: "spare step", 15: "2.0"}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "no code")
	})

	t.Run("code without sam", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{13: "ASM-002", 14: "spare step", 15: ""}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "missing a SAM value")
	})

	t.Run("non-numeric sam", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{12: "fast"}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "positive number")
	})

	t.Run("negative sam", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{12: "-1.25"}))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "positive number")
	})

	t.Run("zero sam", func(t *testing.T) {
		errs, _ := validateRow(csvRow(map[int]string{12: "0"}))
		require.Len(t, errs, 1)
	})
}

func TestValidateRow_Warnings(t *testing.T) {
	errs, warnings := validateRow(csvRow(map[int]string{
		colFacilityCity: "",
		colFacilityRef:  "",
		11:              "", // UOM 1 description
	}))

	assert.Empty(t, errs)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "facility city")
	assert.Contains(t, warnings[1], "facility ref")
	assert.Contains(t, warnings[2], "no description")
}

func TestTransformRow(t *testing.T) {
	rec := transformRow(csvRow(map[int]string{
		colBestPractices:        "Rotate operators; Keep bin stocked",
		colProcessOpportunities: "Reduce reach",
		13:                      "ASM-002",
		14:                      "Torque fasteners",
		15:                      "0.80",
		colTags:                 "assembly; widgets ;",
	}), 3)

	assert.Equal(t, 3, rec.RowNumber)
	assert.Equal(t, "ACME", rec.OrgCode)
	assert.Equal(t, []string{"Rotate operators", "Keep bin stocked"}, rec.BestPractices)
	assert.Equal(t, []string{"Reduce reach"}, rec.ProcessOpportunities)

	require.Len(t, rec.UomEntries, 2)
	assert.Equal(t, "ASM-001", rec.UomEntries[0].Code)
	assert.True(t, rec.UomEntries[0].SamValue.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, "ASM-002", rec.UomEntries[1].Code)
	assert.Equal(t, []string{"assembly", "widgets"}, rec.UomEntries[1].Tags)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ; b "))
	assert.Empty(t, splitList(""))
	assert.Empty(t, splitList(" ; ; "))
}
