package service

import (
	"context"
	"errors"
	"time"

	"standardops/internal/model"
	"standardops/internal/repository"
	"standardops/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UomEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	SamValue    decimal.Decimal `json:"sam_value"`
	Tags        []string        `json:"tags"`
}

type StandardResponse struct {
	ID                   uuid.UUID          `json:"id"`
	Name                 string             `json:"name"`
	AreaID               uuid.UUID          `json:"area_id"`
	DepartmentID         uuid.UUID          `json:"department_id"`
	FacilityID           uuid.UUID          `json:"facility_id"`
	OrganizationID       uuid.UUID          `json:"organization_id"`
	BestPractices        []string           `json:"best_practices"`
	ProcessOpportunities []string           `json:"process_opportunities"`
	UomEntries           []UomEntryResponse `json:"uom_entries"`
	CreatedAt            string             `json:"created_at"`
}

type StandardService interface {
	ListStandards(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]StandardResponse, int64, error)
	GetStandard(ctx context.Context, tc *tenant.TenantContext, id string) (*StandardResponse, error)
}

type standardService struct {
	repo repository.StandardRepository
}

func NewStandardService(repo repository.StandardRepository) StandardService {
	return &standardService{repo: repo}
}

func (s *standardService) ListStandards(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]StandardResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	standards, total, err := s.repo.List(ctx, tc, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StandardResponse, 0, len(standards))
	for i := range standards {
		res = append(res, toStandardResponse(&standards[i]))
	}
	return res, total, nil
}

func (s *standardService) GetStandard(ctx context.Context, tc *tenant.TenantContext, id string) (*StandardResponse, error) {
	stdID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("standard not found")
	}

	std, err := s.repo.GetByID(ctx, tc, stdID)
	if err != nil {
		return nil, errors.New("standard not found")
	}

	resp := toStandardResponse(std)
	return &resp, nil
}

func toStandardResponse(std *model.Standard) StandardResponse {
	entries := make([]UomEntryResponse, 0, len(std.UomEntries))
	for _, e := range std.UomEntries {
		entries = append(entries, UomEntryResponse{
			ID:          e.ID,
			Code:        e.Code,
			Description: e.Description,
			SamValue:    e.SamValue,
			Tags:        e.Tags,
		})
	}

	return StandardResponse{
		ID:                   std.ID,
		Name:                 std.Name,
		AreaID:               std.AreaID,
		DepartmentID:         std.DepartmentID,
		FacilityID:           std.FacilityID,
		OrganizationID:       std.OrganizationID,
		BestPractices:        std.BestPractices,
		ProcessOpportunities: std.ProcessOpportunities,
		UomEntries:           entries,
		CreatedAt:            std.CreatedAt.Format(time.RFC3339),
	}
}
