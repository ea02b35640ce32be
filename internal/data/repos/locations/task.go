package locations

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, task *types.Task) (*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Task, error)
	CreateInstructions(dbc dbctx.Context, instructions []*types.TaskInstruction) ([]*types.TaskInstruction, error)
	ListInstructions(dbc dbctx.Context, taskID uuid.UUID) ([]*types.TaskInstruction, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{
		db:  db,
		log: baseLog.With("repo", "TaskRepo"),
	}
}

func (r *taskRepo) Create(dbc dbctx.Context, task *types.Task) (*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var task types.Task
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Task
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ?", locationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) CreateInstructions(dbc dbctx.Context, instructions []*types.TaskInstruction) ([]*types.TaskInstruction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(instructions) == 0 {
		return []*types.TaskInstruction{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&instructions).Error; err != nil {
		return nil, err
	}
	return instructions, nil
}

// ListInstructions returns steps in execution order.
func (r *taskRepo) ListInstructions(dbc dbctx.Context, taskID uuid.UUID) ([]*types.TaskInstruction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TaskInstruction
	if err := transaction.WithContext(dbc.Ctx).
		Where("task_id = ?", taskID).
		Order("step_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
