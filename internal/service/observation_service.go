package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"standardops/internal/model"
	"standardops/internal/repository"
	"standardops/internal/tenant"
	ws "standardops/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ObservationEntryRequest struct {
	UomEntryID    string          `json:"uom_entry_id" binding:"required,uuid"`
	Quantity      int             `json:"quantity" binding:"required,gt=0"`
	ActualMinutes decimal.Decimal `json:"actual_minutes"`
}

type CreateObservationRequest struct {
	StandardID   string                    `json:"standard_id" binding:"required,uuid"`
	EmployeeName string                    `json:"employee_name" binding:"required"`
	ObservedAt   string                    `json:"observed_at"` // RFC3339; defaults to now
	Notes        string                    `json:"notes"`
	Entries      []ObservationEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

type ObservationResponse struct {
	ID           uuid.UUID       `json:"id"`
	StandardID   uuid.UUID       `json:"standard_id"`
	FacilityID   uuid.UUID       `json:"facility_id"`
	ObserverID   uuid.UUID       `json:"observer_id"`
	EmployeeName string          `json:"employee_name"`
	ObservedAt   string          `json:"observed_at"`
	Notes        string          `json:"notes"`
	TotalSam     decimal.Decimal `json:"total_sam"`
	TotalActual  decimal.Decimal `json:"total_actual"`
	Performance  decimal.Decimal `json:"performance"`
}

type ObservationService interface {
	CreateObservation(ctx context.Context, tc *tenant.TenantContext, observerID uuid.UUID, req CreateObservationRequest) (*ObservationResponse, error)
	GetObservation(ctx context.Context, tc *tenant.TenantContext, id string) (*ObservationResponse, error)
	ListObservations(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]ObservationResponse, int64, error)
}

type observationService struct {
	obsRepo      repository.ObservationRepository
	standardRepo repository.StandardRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewObservationService(
	obsRepo repository.ObservationRepository,
	standardRepo repository.StandardRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ObservationService {
	return &observationService{
		obsRepo:      obsRepo,
		standardRepo: standardRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// CreateObservation records a timed observation against a standard the tenant
// can see. SAM totals come from the standard's own UOM entries, so performance
// is always scored against current standard data.
func (s *observationService) CreateObservation(ctx context.Context, tc *tenant.TenantContext, observerID uuid.UUID, req CreateObservationRequest) (*ObservationResponse, error) {
	// Guarded here as well as in the binding tags: the performance division
	// below needs a non-zero actual total, which an empty entry list can't give.
	if len(req.Entries) == 0 {
		return nil, errors.New("at least one entry is required")
	}

	stdID, err := uuid.Parse(req.StandardID)
	if err != nil {
		return nil, errors.New("standard not found")
	}

	std, err := s.standardRepo.GetByID(ctx, tc, stdID)
	if err != nil {
		return nil, errors.New("standard not found")
	}

	samByEntry := make(map[uuid.UUID]decimal.Decimal, len(std.UomEntries))
	for _, e := range std.UomEntries {
		samByEntry[e.ID] = e.SamValue
	}

	observedAt := time.Now()
	if req.ObservedAt != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ObservedAt)
		if parseErr != nil {
			return nil, errors.New("observed_at must be RFC3339")
		}
		observedAt = parsed
	}

	obs := &model.Observation{
		StandardID:   std.ID,
		FacilityID:   std.FacilityID,
		ObserverID:   observerID,
		EmployeeName: req.EmployeeName,
		ObservedAt:   observedAt,
		Notes:        req.Notes,
	}

	totalSam := decimal.Zero
	totalActual := decimal.Zero
	for _, entryReq := range req.Entries {
		entryID, parseErr := uuid.Parse(entryReq.UomEntryID)
		if parseErr != nil {
			return nil, errors.New("invalid uom entry id")
		}
		sam, ok := samByEntry[entryID]
		if !ok {
			return nil, errors.New("uom entry does not belong to the standard")
		}
		if !entryReq.ActualMinutes.IsPositive() {
			return nil, errors.New("actual_minutes must be a positive number")
		}

		qty := decimal.NewFromInt(int64(entryReq.Quantity))
		totalSam = totalSam.Add(sam.Mul(qty))
		totalActual = totalActual.Add(entryReq.ActualMinutes)

		obs.Entries = append(obs.Entries, model.ObservationEntry{
			UomEntryID:    entryID,
			Quantity:      entryReq.Quantity,
			ActualMinutes: entryReq.ActualMinutes,
		})
	}

	obs.TotalSam = totalSam
	obs.TotalActual = totalActual
	obs.Performance = totalSam.DivRound(totalActual, 4)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.obsRepo.Create(txCtx, obs)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastCreated(obs)
	resp := toObservationResponse(obs)
	return &resp, nil
}

func (s *observationService) GetObservation(ctx context.Context, tc *tenant.TenantContext, id string) (*ObservationResponse, error) {
	obsID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("observation not found")
	}

	obs, err := s.obsRepo.GetByID(ctx, tc, obsID)
	if err != nil {
		return nil, errors.New("observation not found")
	}

	resp := toObservationResponse(obs)
	return &resp, nil
}

func (s *observationService) ListObservations(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]ObservationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	observations, total, err := s.obsRepo.List(ctx, tc, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ObservationResponse, 0, len(observations))
	for i := range observations {
		res = append(res, toObservationResponse(&observations[i]))
	}
	return res, total, nil
}

func toObservationResponse(obs *model.Observation) ObservationResponse {
	return ObservationResponse{
		ID:           obs.ID,
		StandardID:   obs.StandardID,
		FacilityID:   obs.FacilityID,
		ObserverID:   obs.ObserverID,
		EmployeeName: obs.EmployeeName,
		ObservedAt:   obs.ObservedAt.Format(time.RFC3339),
		Notes:        obs.Notes,
		TotalSam:     obs.TotalSam,
		TotalActual:  obs.TotalActual,
		Performance:  obs.Performance,
	}
}

func (s *observationService) broadcastCreated(obs *model.Observation) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(StreamEvent{
		Event: "observation.created",
		Data: map[string]interface{}{
			"id":          obs.ID.String(),
			"standard_id": obs.StandardID.String(),
			"performance": obs.Performance.String(),
		},
	})
	if err != nil {
		log.Println("Failed to marshal observation event:", err)
		return
	}
	s.hub.Broadcast <- payload
}
