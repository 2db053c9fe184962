package clearance

import (
	"context"
	"errors"
	"strings"
	"time"

	clearanceerrors "go-offboarding/internal/clearance/errors"
	"go-offboarding/internal/department"
	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/contextutil"
	"go-offboarding/internal/shared/dbtx"
	"go-offboarding/internal/shared/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entityName = "clearance"

// DepartmentSource lists the departments that must sign off an exit.
type DepartmentSource interface {
	ListClearanceDepartments(ctx context.Context, companyID string) ([]department.ClearanceDepartment, error)
}

//go:generate mockgen -source=clearance_service.go -destination=mock/clearance_service_mock.go -package=mock
type Service interface {
	InitializeForSeparation(ctx context.Context, companyID, separationID string) error
	StartReview(ctx context.Context, companyID, actor, id, notes string) (ClearanceResponse, error)
	MarkCleared(ctx context.Context, companyID, actor, id, notes string) (ClearanceResponse, error)
	FlagIssues(ctx context.Context, companyID, actor, id string, req FlagIssuesRequest) (ClearanceResponse, error)
	IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error)
	Progress(ctx context.Context, companyID, separationID string) (ProgressResponse, error)
	GetAll(ctx context.Context, companyID string, filter Filter) ([]ClearanceResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ClearanceResponse, error)
	ListBySeparation(ctx context.Context, companyID, separationID string) ([]ClearanceResponse, error)
	HasProgressed(ctx context.Context, companyID, separationID string) (bool, error)
	DeleteForSeparation(ctx context.Context, companyID, separationID string) error
}

type service struct {
	db          *gorm.DB
	repo        Repository
	departments DepartmentSource
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, departments DepartmentSource, logger ...*zap.Logger) Service {
	l := zap.L().Named("clearance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("clearance.service")
	}
	return &service{db: db, repo: repo, departments: departments, now: time.Now, logger: l}
}

// InitializeForSeparation creates one pending clearance per clearance
// department. A second call for the same separation is a no-op.
func (s *service) InitializeForSeparation(ctx context.Context, companyID, separationID string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return apperror.InvalidField("Company Id")
	}
	sepUUID, err := uuid.Parse(separationID)
	if err != nil {
		return apperror.InvalidField("Separation Id")
	}

	err = dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		existing, err := qtx.CountBySeparation(ctx, companyID, separationID)
		if err != nil {
			return err
		}
		if existing > 0 {
			log.Debug("clearances already initialized", zap.String("separation_id", separationID))
			return nil
		}

		depts, err := s.departments.ListClearanceDepartments(ctx, companyID)
		if err != nil {
			return err
		}
		if len(depts) == 0 {
			return clearanceerrors.ErrNoClearanceDepartments
		}

		clearances := make([]Clearance, 0, len(depts))
		for _, d := range depts {
			deptUUID, err := uuid.Parse(d.ID)
			if err != nil {
				return err
			}
			clearances = append(clearances, Clearance{
				ID:             uuid.New(),
				CompanyID:      companyUUID,
				SeparationID:   sepUUID,
				DepartmentID:   deptUUID,
				DepartmentName: d.Name,
				SortOrder:      d.Order,
				Status:         StatusPending,
			})
		}

		return qtx.CreateBatch(ctx, clearances)
	})
	if err != nil {
		log.Warn("initialize clearances failed", zap.String("separation_id", separationID), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("clearances initialized", zap.String("separation_id", separationID))
	return nil
}

func (s *service) StartReview(ctx context.Context, companyID, actor, id, notes string) (ClearanceResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusInProgress, func(c *Clearance) error {
		if notes != "" {
			c.Notes = notes
		}
		return nil
	})
}

// MarkCleared also resolves a clearance previously flagged with issues.
func (s *service) MarkCleared(ctx context.Context, companyID, actor, id, notes string) (ClearanceResponse, error) {
	return s.transition(ctx, companyID, actor, id, StatusCleared, func(c *Clearance) error {
		now := s.now().UTC()
		c.ClearanceDate = &now
		c.ClearedBy = actor
		c.OutstandingItems = nil
		if notes != "" {
			c.Notes = notes
		}
		return nil
	})
}

func (s *service) FlagIssues(ctx context.Context, companyID, actor, id string, req FlagIssuesRequest) (ClearanceResponse, error) {
	items := make([]string, 0, len(req.OutstandingItems))
	for _, item := range req.OutstandingItems {
		item = strings.TrimSpace(item)
		if item == "" {
			return ClearanceResponse{}, clearanceerrors.ErrOutstandingItemsRequired
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return ClearanceResponse{}, clearanceerrors.ErrOutstandingItemsRequired
	}

	return s.transition(ctx, companyID, actor, id, StatusIssuesFound, func(c *Clearance) error {
		c.OutstandingItems = items
		if req.Notes != "" {
			c.Notes = req.Notes
		}
		return nil
	})
}

func (s *service) transition(ctx context.Context, companyID, actor, id string, to Status, apply func(c *Clearance) error) (ClearanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(actor) == "" {
		return ClearanceResponse{}, apperror.ErrActorRequired
	}

	var (
		c    *Clearance
		from Status
	)
	err := dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		c, err = qtx.FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		from = c.Status

		if !isAllowedStatusTransition(from, to) {
			metrics.RecordRejected(entityName, string(from), string(to))
			return apperror.InvalidTransition(entityName, string(from), string(to))
		}

		c.Status = to
		if err := apply(c); err != nil {
			return err
		}

		return qtx.Update(ctx, c)
	})
	if err != nil {
		log.Warn("clearance transition failed",
			zap.String("clearance_id", id),
			zap.String("attempted_status", string(to)),
			zap.Error(err),
		)
		return ClearanceResponse{}, mapRepositoryError(err)
	}

	metrics.RecordTransition(entityName, string(from), string(to))
	log.Info("clearance status changed",
		zap.String("clearance_id", id),
		zap.String("department", c.DepartmentName),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)),
		zap.String("actor", actor),
	)
	return mapToResponse(*c), nil
}

func (s *service) IsFullyCleared(ctx context.Context, companyID, separationID string) (bool, error) {
	clearances, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).ListBySeparation(ctx, companyID, separationID)
	if err != nil {
		return false, err
	}
	return fullyCleared(clearances), nil
}

// Progress is recomputed from the rows on every call.
func (s *service) Progress(ctx context.Context, companyID, separationID string) (ProgressResponse, error) {
	clearances, err := s.repo.WithTx(dbtx.Conn(ctx, s.db)).ListBySeparation(ctx, companyID, separationID)
	if err != nil {
		return ProgressResponse{}, err
	}

	cleared := 0
	for _, c := range clearances {
		if c.Status == StatusCleared {
			cleared++
		}
	}

	return ProgressResponse{
		SeparationID: separationID,
		Cleared:      cleared,
		Total:        len(clearances),
		FullyCleared: fullyCleared(clearances),
	}, nil
}

func fullyCleared(clearances []Clearance) bool {
	if len(clearances) == 0 {
		return false
	}
	for _, c := range clearances {
		if c.Status != StatusCleared {
			return false
		}
	}
	return true
}

func (s *service) GetAll(ctx context.Context, companyID string, filter Filter) ([]ClearanceResponse, error) {
	clearances, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(clearances), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ClearanceResponse, error) {
	c, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ClearanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*c), nil
}

func (s *service) ListBySeparation(ctx context.Context, companyID, separationID string) ([]ClearanceResponse, error) {
	clearances, err := s.repo.ListBySeparation(ctx, companyID, separationID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(clearances), nil
}

func (s *service) HasProgressed(ctx context.Context, companyID, separationID string) (bool, error) {
	return s.repo.WithTx(dbtx.Conn(ctx, s.db)).ExistsBeyondPending(ctx, companyID, separationID)
}

func (s *service) DeleteForSeparation(ctx context.Context, companyID, separationID string) error {
	return dbtx.Run(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteBySeparation(ctx, companyID, separationID)
	})
}

func isAllowedStatusTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCleared || to == StatusIssuesFound
	case StatusInProgress:
		return to == StatusCleared || to == StatusIssuesFound
	case StatusIssuesFound:
		return to == StatusCleared
	default:
		return false
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return clearanceerrors.ErrClearanceNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return clearanceerrors.ErrClearanceExists
	}
	return err
}

func mapToResponse(c Clearance) ClearanceResponse {
	resp := ClearanceResponse{
		ID:               c.ID.String(),
		SeparationID:     c.SeparationID.String(),
		DepartmentID:     c.DepartmentID.String(),
		DepartmentName:   c.DepartmentName,
		Status:           string(c.Status),
		OutstandingItems: c.OutstandingItems,
		Notes:            c.Notes,
		ClearedBy:        c.ClearedBy,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
	if c.ClearanceDate != nil {
		d := c.ClearanceDate.Format(time.RFC3339)
		resp.ClearanceDate = &d
	}
	return resp
}

func mapToListResponse(clearances []Clearance) []ClearanceResponse {
	res := make([]ClearanceResponse, len(clearances))
	for i, c := range clearances {
		res[i] = mapToResponse(c)
	}
	return res
}
