package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"standardops/internal/model"
	"standardops/internal/repository"
	ws "standardops/internal/websocket"
)

// RowOutcome reports the processing result of one CSV row, in submission order
type RowOutcome struct {
	Row          int    `json:"row"`
	StandardName string `json:"standardName"`
	Status       string `json:"status"` // "created" or "error"
	Message      string `json:"message,omitempty"`
}

// ImportResult is the aggregate outcome of one CSV submission.
// Success is true iff zero rows errored, at validation or at processing.
type ImportResult struct {
	Success  bool         `json:"success"`
	Created  int          `json:"created"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
	Details  []RowOutcome `json:"details"`
}

// StreamEvent is the payload shape pushed to connected admin UIs
type StreamEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type ImportService interface {
	ImportStandards(ctx context.Context, csvText string) (*ImportResult, error)
	Template() (filename, content string)
}

type importService struct {
	orgRepo       repository.OrganizationRepository
	hierarchyRepo repository.HierarchyRepository
	standardRepo  repository.StandardRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewImportService(
	orgRepo repository.OrganizationRepository,
	hierarchyRepo repository.HierarchyRepository,
	standardRepo repository.StandardRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ImportService {
	return &importService{
		orgRepo:       orgRepo,
		hierarchyRepo: hierarchyRepo,
		standardRepo:  standardRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

// ImportStandards runs the full pipeline: parse → validate → transform →
// per-row transactional processing.
//
// Validation is an all-or-nothing gate: one invalid row rejects the whole
// submission before any write. Processing failures are per-row: each row gets
// its own transaction, so a duplicate-standard conflict (or any store error)
// on one row never rolls back or blocks its siblings.
//
// The returned error is non-nil only for structural parse failures; every
// other outcome is expressed in the result.
func (s *importService) ImportStandards(ctx context.Context, csvText string) (*ImportResult, error) {
	records, err := parseStandardsCSV(csvText)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors:   []string{},
		Warnings: []string{},
		Details:  []RowOutcome{},
	}

	for i, record := range records {
		rowNum := i + 1
		errs, warnings := validateRow(record)
		for _, msg := range errs {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, msg))
		}
		for _, msg := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", rowNum, msg))
		}
	}

	// Reject-all gate: zero rows are created when any row fails validation
	if len(result.Errors) > 0 {
		return result, nil
	}

	for i, record := range records {
		rec := transformRow(record, i+1)
		outcome := s.processRow(ctx, rec)
		if outcome.Status == "created" {
			result.Created++
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", outcome.Row, outcome.Message))
		}
		result.Details = append(result.Details, outcome)
	}

	result.Success = len(result.Errors) == 0
	s.broadcastCompleted(result)
	return result, nil
}

// processRow creates one standard and its ancestor hierarchy inside a single
// transaction: either the whole row's new entities persist or none do.
// A unique-constraint race (two submissions creating the same organization
// code concurrently) is surfaced as a row error rather than retried; the
// caller can resubmit the failed rows.
func (s *importService) processRow(ctx context.Context, rec standardRecord) RowOutcome {
	outcome := RowOutcome{Row: rec.RowNumber, StandardName: rec.StandardName}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		org, err := s.orgRepo.FindOrCreateByCode(txCtx, rec.OrgCode, rec.OrgName)
		if err != nil {
			return fmt.Errorf("organization %q: %w", rec.OrgCode, err)
		}

		fac, err := s.hierarchyRepo.FindOrCreateFacility(txCtx, &model.Facility{
			Name:           rec.FacilityName,
			Ref:            rec.FacilityRef,
			City:           rec.FacilityCity,
			OrganizationID: org.ID,
		})
		if err != nil {
			return fmt.Errorf("facility %q: %w", rec.FacilityName, err)
		}

		dep, err := s.hierarchyRepo.FindOrCreateDepartment(txCtx, &model.Department{
			Name:       rec.DepartmentName,
			FacilityID: fac.ID,
		})
		if err != nil {
			return fmt.Errorf("department %q: %w", rec.DepartmentName, err)
		}

		area, err := s.hierarchyRepo.FindOrCreateArea(txCtx, &model.Area{
			Name:         rec.AreaName,
			DepartmentID: dep.ID,
		})
		if err != nil {
			return fmt.Errorf("area %q: %w", rec.AreaName, err)
		}

		exists, err := s.standardRepo.ExistsByNameAndArea(txCtx, rec.StandardName, area.ID)
		if err != nil {
			return fmt.Errorf("standard lookup %q: %w", rec.StandardName, err)
		}
		if exists {
			return fmt.Errorf("standard %q already exists in area %q", rec.StandardName, rec.AreaName)
		}

		std := &model.Standard{
			Name:                 rec.StandardName,
			AreaID:               area.ID,
			DepartmentID:         dep.ID,
			FacilityID:           fac.ID,
			OrganizationID:       org.ID,
			BestPractices:        rec.BestPractices,
			ProcessOpportunities: rec.ProcessOpportunities,
		}
		for _, entry := range rec.UomEntries {
			std.UomEntries = append(std.UomEntries, model.UomEntry{
				Code:        entry.Code,
				Description: entry.Description,
				SamValue:    entry.SamValue,
				Tags:        entry.Tags,
			})
		}

		if err := s.standardRepo.Create(txCtx, std); err != nil {
			if repository.IsDuplicateKey(err) {
				return fmt.Errorf("standard %q conflicts with an existing record", rec.StandardName)
			}
			return fmt.Errorf("standard %q: %w", rec.StandardName, err)
		}
		return nil
	})

	if err != nil {
		// A unique-violation here means the row lost a create race; the row
		// transaction rolled back as a whole either way.
		outcome.Status = "error"
		outcome.Message = err.Error()
		return outcome
	}

	outcome.Status = "created"
	return outcome
}

func (s *importService) Template() (string, string) {
	return templateName, TemplateCSV()
}

func (s *importService) broadcastCompleted(result *ImportResult) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(StreamEvent{
		Event: "import.completed",
		Data: map[string]interface{}{
			"success": result.Success,
			"created": result.Created,
			"errors":  len(result.Errors),
		},
	})
	if err != nil {
		log.Println("Failed to marshal import event:", err)
		return
	}
	s.hub.Broadcast <- payload
}
