package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"standardops/internal/model"
	"standardops/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOrgRepo struct {
	byCode map[string]*model.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{byCode: map[string]*model.Organization{}}
}

func (f *fakeOrgRepo) Create(_ context.Context, org *model.Organization) error {
	org.ID = uuid.New()
	f.byCode[org.Code] = org
	return nil
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	for _, org := range f.byCode {
		if org.ID == id {
			return org, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrgRepo) GetByCode(_ context.Context, code string) (*model.Organization, error) {
	org, ok := f.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (f *fakeOrgRepo) FindOrCreateByCode(_ context.Context, code, name string) (*model.Organization, error) {
	if org, ok := f.byCode[code]; ok {
		return org, nil
	}
	org := &model.Organization{ID: uuid.New(), Code: code, Name: name}
	f.byCode[code] = org
	return org, nil
}

func (f *fakeOrgRepo) List(_ context.Context) ([]model.Organization, error) {
	var out []model.Organization
	for _, org := range f.byCode {
		out = append(out, *org)
	}
	return out, nil
}

func (f *fakeOrgRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, org := range f.byCode {
		out = append(out, org.ID)
	}
	return out, nil
}

type fakeHierarchyRepo struct {
	facilities  []*model.Facility
	departments []*model.Department
	areas       []*model.Area
}

func (f *fakeHierarchyRepo) FindOrCreateFacility(_ context.Context, fac *model.Facility) (*model.Facility, error) {
	for _, existing := range f.facilities {
		if existing.Name == fac.Name && existing.OrganizationID == fac.OrganizationID {
			return existing, nil
		}
	}
	fac.ID = uuid.New()
	f.facilities = append(f.facilities, fac)
	return fac, nil
}

func (f *fakeHierarchyRepo) FindOrCreateDepartment(_ context.Context, dep *model.Department) (*model.Department, error) {
	for _, existing := range f.departments {
		if existing.Name == dep.Name && existing.FacilityID == dep.FacilityID {
			return existing, nil
		}
	}
	dep.ID = uuid.New()
	f.departments = append(f.departments, dep)
	return dep, nil
}

func (f *fakeHierarchyRepo) FindOrCreateArea(_ context.Context, area *model.Area) (*model.Area, error) {
	for _, existing := range f.areas {
		if existing.Name == area.Name && existing.DepartmentID == area.DepartmentID {
			return existing, nil
		}
	}
	area.ID = uuid.New()
	f.areas = append(f.areas, area)
	return area, nil
}

func (f *fakeHierarchyRepo) ListFacilities(_ context.Context, _ *tenant.TenantContext) ([]model.Facility, error) {
	var out []model.Facility
	for _, fac := range f.facilities {
		out = append(out, *fac)
	}
	return out, nil
}

func (f *fakeHierarchyRepo) ListDepartments(_ context.Context, _ *tenant.TenantContext, facilityID uuid.UUID) ([]model.Department, error) {
	var out []model.Department
	for _, dep := range f.departments {
		if dep.FacilityID == facilityID {
			out = append(out, *dep)
		}
	}
	return out, nil
}

func (f *fakeHierarchyRepo) ListAreas(_ context.Context, _ *tenant.TenantContext, departmentID uuid.UUID) ([]model.Area, error) {
	var out []model.Area
	for _, area := range f.areas {
		if area.DepartmentID == departmentID {
			out = append(out, *area)
		}
	}
	return out, nil
}

type fakeStandardRepo struct {
	standards []*model.Standard
	createErr error
}

func (f *fakeStandardRepo) Create(_ context.Context, std *model.Standard) error {
	if f.createErr != nil {
		return f.createErr
	}
	std.ID = uuid.New()
	f.standards = append(f.standards, std)
	return nil
}

func (f *fakeStandardRepo) GetByID(_ context.Context, _ *tenant.TenantContext, id uuid.UUID) (*model.Standard, error) {
	for _, std := range f.standards {
		if std.ID == id {
			return std, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStandardRepo) ExistsByNameAndArea(_ context.Context, name string, areaID uuid.UUID) (bool, error) {
	for _, std := range f.standards {
		if std.Name == name && std.AreaID == areaID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStandardRepo) List(_ context.Context, _ *tenant.TenantContext, _, _ int) ([]model.Standard, int64, error) {
	var out []model.Standard
	for _, std := range f.standards {
		out = append(out, *std)
	}
	return out, int64(len(out)), nil
}

type importFixture struct {
	orgs      *fakeOrgRepo
	hierarchy *fakeHierarchyRepo
	standards *fakeStandardRepo
	svc       ImportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		orgs:      newFakeOrgRepo(),
		hierarchy: &fakeHierarchyRepo{},
		standards: &fakeStandardRepo{},
	}
	f.svc = NewImportService(f.orgs, f.hierarchy, f.standards, fakeTxManager{}, nil)
	return f
}

func importCSV(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(csvHeader, ","))
	sb.WriteString("\n")
	for _, row := range rows {
		quoted := make([]string, len(row))
		for i, cell := range row {
			if strings.ContainsAny(cell, ",\"\n") {
				quoted[i] = fmt.Sprintf("%q", cell)
			} else {
				quoted[i] = cell
			}
		}
		sb.WriteString(strings.Join(quoted, ","))
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestImportStandards_SingleRow(t *testing.T) {
	f := newImportFixture()

	result, err := f.svc.ImportStandards(context.Background(), importCSV(csvRow(nil)))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "created", result.Details[0].Status)
	assert.Equal(t, "Widget Final Assembly", result.Details[0].StandardName)

	require.Len(t, f.standards.standards, 1)
	std := f.standards.standards[0]
	assert.Equal(t, f.orgs.byCode["ACME"].ID, std.OrganizationID)
	require.Len(t, std.UomEntries, 1)
	assert.Equal(t, "ASM-001", std.UomEntries[0].Code)
}

func TestImportStandards_RejectsAllWhenAnyRowInvalid(t *testing.T) {
	f := newImportFixture()
	good := csvRow(nil)
	bad := csvRow(map[int]string{colStandardName: "", 12: "not-a-number"})

	result, err := f.svc.ImportStandards(context.Background(), importCSV(good, bad))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, result.Details, "no rows are processed when validation fails")
	assert.Empty(t, f.standards.standards, "no writes happen when validation fails")

	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "row 2:"), "errors carry the failing row number")
	assert.True(t, strings.HasPrefix(result.Errors[1], "row 2:"))
}

func TestImportStandards_SharedAncestorsAreReused(t *testing.T) {
	f := newImportFixture()
	first := csvRow(nil)
	second := csvRow(map[int]string{colStandardName: "Widget Packaging"})

	result, err := f.svc.ImportStandards(context.Background(), importCSV(first, second))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Created)

	// Two rows naming the same org/facility/department/area share one chain.
	assert.Len(t, f.orgs.byCode, 1)
	assert.Len(t, f.hierarchy.facilities, 1)
	assert.Len(t, f.hierarchy.departments, 1)
	assert.Len(t, f.hierarchy.areas, 1)
	assert.Len(t, f.standards.standards, 2)
}

func TestImportStandards_DuplicateStandardIsRowError(t *testing.T) {
	f := newImportFixture()
	row := csvRow(nil)
	sibling := csvRow(map[int]string{colStandardName: "Widget Packaging"})

	_, err := f.svc.ImportStandards(context.Background(), importCSV(row))
	require.NoError(t, err)

	// Resubmitting the same standard alongside a new sibling: the duplicate
	// errors, the sibling is still created.
	result, err := f.svc.ImportStandards(context.Background(), importCSV(row, sibling))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "already exists")

	require.Len(t, result.Details, 2)
	assert.Equal(t, "error", result.Details[0].Status)
	assert.Equal(t, "created", result.Details[1].Status)
	assert.Len(t, f.standards.standards, 2)
}

func TestImportStandards_DetailsInSubmissionOrder(t *testing.T) {
	f := newImportFixture()
	rows := [][]string{
		csvRow(map[int]string{colStandardName: "First"}),
		csvRow(map[int]string{colStandardName: "Second"}),
		csvRow(map[int]string{colStandardName: "Third"}),
	}

	result, err := f.svc.ImportStandards(context.Background(), importCSV(rows...))

	require.NoError(t, err)
	require.Len(t, result.Details, 3)
	for i, name := range []string{"First", "Second", "Third"} {
		assert.Equal(t, i+1, result.Details[i].Row)
		assert.Equal(t, name, result.Details[i].StandardName)
	}
}

func TestImportStandards_ParseErrorReturnsError(t *testing.T) {
	f := newImportFixture()

	result, err := f.svc.ImportStandards(context.Background(), "not,a,valid,header\n")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestImportStandards_WarningsDoNotBlock(t *testing.T) {
	f := newImportFixture()
	row := csvRow(map[int]string{colFacilityCity: ""})

	result, err := f.svc.ImportStandards(context.Background(), importCSV(row))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "facility city")
}

func TestTemplate(t *testing.T) {
	f := newImportFixture()

	filename, content := f.svc.Template()

	assert.Equal(t, "standards_import_template.csv", filename)
	assert.True(t, strings.HasPrefix(content, "Organization Code,"))
}
