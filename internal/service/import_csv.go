package service

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// csvHeader is the fixed column schema for standard imports: eight identity
// columns, two delimited-list columns, three repeating UOM triples, and a
// trailing tags list. A file whose header or column count deviates is
// rejected outright.
var csvHeader = []string{
	"Organization Code",
	"Organization Name",
	"Facility Name",
	"Facility Ref",
	"Facility City",
	"Department Name",
	"Area Name",
	"Standard Name",
	"Best Practices",
	"Process Opportunities",
	"UOM 1 Code",
	"UOM 1 Description",
	"UOM 1 SAM",
	"UOM 2 Code",
	"UOM 2 Description",
	"UOM 2 SAM",
	"UOM 3 Code",
	"UOM 3 Description",
	"UOM 3 SAM",
	"Tags",
}

const (
	colOrgCode = iota
	colOrgName
	colFacilityName
	colFacilityRef
	colFacilityCity
	colDepartmentName
	colAreaName
	colStandardName
	colBestPractices
	colProcessOpportunities
	colUomFirst // three (code, description, sam) triples start here
)

const (
	colTags      = 19
	uomTriples   = 3
	listSep      = ";"
	templateName = "standards_import_template.csv"
)

// uomEntryInput is one parsed unit-of-measure line from a row
type uomEntryInput struct {
	Code        string
	Description string
	SamValue    decimal.Decimal
	Tags        []string
}

// standardRecord is the typed, validated form of one CSV row
type standardRecord struct {
	RowNumber            int
	OrgCode              string
	OrgName              string
	FacilityName         string
	FacilityRef          string
	FacilityCity         string
	DepartmentName       string
	AreaName             string
	StandardName         string
	BestPractices        []string
	ProcessOpportunities []string
	UomEntries           []uomEntryInput
}

// parseStandardsCSV splits the submission into data rows. Any structural
// problem (bad quoting, wrong column count, unexpected header) fails the
// whole file: no partial processing past this point.
func parseStandardsCSV(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = len(csvHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	header := records[0]
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	return records[1:], nil
}

// validateRow checks one data row and returns fatal errors and non-fatal
// warnings. Messages carry no row prefix; the caller adds row numbers.
func validateRow(record []string) (errs []string, warnings []string) {
	required := []struct {
		col  int
		name string
	}{
		{colOrgCode, "organization code"},
		{colOrgName, "organization name"},
		{colFacilityName, "facility name"},
		{colDepartmentName, "department name"},
		{colAreaName, "area name"},
		{colStandardName, "standard name"},
	}
	for _, f := range required {
		if strings.TrimSpace(record[f.col]) == "" {
			errs = append(errs, f.name+" is required")
		}
	}

	if strings.TrimSpace(record[colFacilityCity]) == "" {
		warnings = append(warnings, "facility city is empty")
	}
	if strings.TrimSpace(record[colFacilityRef]) == "" {
		warnings = append(warnings, "facility ref is empty")
	}

	entries := 0
	for i := 0; i < uomTriples; i++ {
		base := colUomFirst + i*3
		code := strings.TrimSpace(record[base])
		desc := strings.TrimSpace(record[base+1])
		sam := strings.TrimSpace(record[base+2])

		if code == "" && desc == "" && sam == "" {
			continue
		}
		if code == "" {
			errs = append(errs, fmt.Sprintf("UOM %d has a value but no code", i+1))
			continue
		}
		if sam == "" {
			errs = append(errs, fmt.Sprintf("UOM %d (%s) is missing a SAM value", i+1, code))
			continue
		}
		value, err := decimal.NewFromString(sam)
		if err != nil || !value.IsPositive() {
			errs = append(errs, fmt.Sprintf("UOM %d (%s) SAM value %q must be a positive number", i+1, code, sam))
			continue
		}
		if desc == "" {
			warnings = append(warnings, fmt.Sprintf("UOM %d (%s) has no description", i+1, code))
		}
		entries++
	}
	if entries == 0 {
		errs = append(errs, "at least one UOM entry is required")
	}

	return errs, warnings
}

// transformRow converts a validated row into its typed record. It assumes
// validateRow passed; malformed SAM cells are skipped rather than re-reported.
func transformRow(record []string, rowNumber int) standardRecord {
	tags := splitList(record[colTags])

	rec := standardRecord{
		RowNumber:            rowNumber,
		OrgCode:              strings.TrimSpace(record[colOrgCode]),
		OrgName:              strings.TrimSpace(record[colOrgName]),
		FacilityName:         strings.TrimSpace(record[colFacilityName]),
		FacilityRef:          strings.TrimSpace(record[colFacilityRef]),
		FacilityCity:         strings.TrimSpace(record[colFacilityCity]),
		DepartmentName:       strings.TrimSpace(record[colDepartmentName]),
		AreaName:             strings.TrimSpace(record[colAreaName]),
		StandardName:         strings.TrimSpace(record[colStandardName]),
		BestPractices:        splitList(record[colBestPractices]),
		ProcessOpportunities: splitList(record[colProcessOpportunities]),
	}

	for i := 0; i < uomTriples; i++ {
		base := colUomFirst + i*3
		code := strings.TrimSpace(record[base])
		if code == "" {
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(record[base+2]))
		if err != nil || !value.IsPositive() {
			continue
		}
		rec.UomEntries = append(rec.UomEntries, uomEntryInput{
			Code:        code,
			Description: strings.TrimSpace(record[base+1]),
			SamValue:    value,
			Tags:        tags,
		})
	}

	return rec
}

// splitList parses a semicolon-delimited cell into trimmed, non-empty items
func splitList(cell string) []string {
	items := []string{}
	for _, part := range strings.Split(cell, listSep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// TemplateCSV renders the canonical import template: the header row plus one
// example row that round-trips cleanly through parse and validation.
func TemplateCSV() string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(csvHeader)
	_ = w.Write([]string{
		"ACME", "Acme Manufacturing",
		"Plant 1", "P1", "Springfield",
		"Assembly", "Line A",
		"Widget Final Assembly",
		"Keep parts bin stocked; Rotate operators hourly",
		"Reduce reach distance",
		"ASM-001", "Attach housing", "1.25",
		"ASM-002", "Torque fasteners", "0.80",
		"", "", "",
		"assembly; widgets",
	})
	w.Flush()
	return sb.String()
}
