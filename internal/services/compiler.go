package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

const (
	compiledConfidence      = 0.8
	compiledDurationSeconds = 60
)

// CompilerService turns a task's written instructions into sequenced
// robot moments. Generation is append-only and idempotent: re-running it
// skips instructions whose titles already exist as moments and continues
// the sequence from where it left off.
type CompilerService interface {
	GenerateFromTask(ctx context.Context, taskID, actorID uuid.UUID) ([]*types.Moment, int, error)
}

type compilerService struct {
	db         *gorm.DB
	log        *logger.Logger
	taskRepo   repos.TaskRepo
	momentRepo repos.MomentRepo
}

func NewCompilerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	taskRepo repos.TaskRepo,
	momentRepo repos.MomentRepo,
) CompilerService {
	return &compilerService{
		db:         db,
		log:        baseLog.With("service", "CompilerService"),
		taskRepo:   taskRepo,
		momentRepo: momentRepo,
	}
}

// GenerateFromTask returns the created moments plus the number of
// instructions skipped as already-compiled.
func (s *compilerService) GenerateFromTask(ctx context.Context, taskID, actorID uuid.UUID) ([]*types.Moment, int, error) {
	var created []*types.Moment
	skipped := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		task, err := s.taskRepo.GetByID(dbc, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return apierr.NotFound("task_not_found", fmt.Errorf("task %s not found", taskID))
		}

		instructions, err := s.taskRepo.ListInstructions(dbc, taskID)
		if err != nil {
			return err
		}
		if len(instructions) == 0 {
			return apierr.Validation("no_instructions", fmt.Errorf("no instructions found for task %s", taskID))
		}

		existingTitles, err := s.momentRepo.ExistingTitlesByTask(dbc, taskID)
		if err != nil {
			return err
		}
		// deleted moments leave sequence gaps; MAX keeps numbers from
		// ever being reused
		seq, err := s.momentRepo.MaxSequenceByTask(dbc, taskID)
		if err != nil {
			return err
		}

		toCreate := []*types.Moment{}
		for _, instr := range instructions {
			title := strings.TrimSpace(instr.Title)
			if title == "" {
				title = fmt.Sprintf("Step %d", instr.StepNumber)
			}
			if existingTitles[strings.ToLower(title)] {
				skipped++
				continue
			}

			seq++
			m, err := s.buildMoment(task, instr, title, seq, actorID)
			if err != nil {
				return err
			}
			toCreate = append(toCreate, m)
			existingTitles[strings.ToLower(title)] = true
		}

		if len(toCreate) == 0 {
			return nil
		}
		out, err := s.momentRepo.Create(dbc, toCreate)
		if err != nil {
			return err
		}
		created = out
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.log.Info("moment generation finished",
		"task_id", taskID,
		"created", len(created),
		"skipped", skipped,
	)
	return created, skipped, nil
}

func (s *compilerService) buildMoment(task *types.Task, instr *types.TaskInstruction, title string, seq int, actorID uuid.UUID) (*types.Moment, error) {
	room := strings.TrimSpace(instr.Room)
	if room == "" {
		room = task.Category
	}

	tags := []string{}
	if task.Category != "" {
		tags = append(tags, task.Category)
	}
	tags = append(tags, "auto-generated")

	tagsRaw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	keywordsRaw, err := json.Marshal(extractKeywords(title))
	if err != nil {
		return nil, err
	}

	confidence := compiledConfidence
	duration := compiledDurationSeconds
	return &types.Moment{
		ID:                       uuid.New(),
		OrganizationID:           task.OrganizationID,
		LocationID:               task.LocationID,
		TaskID:                   task.ID,
		Title:                    title,
		Description:              instr.Description,
		MomentType:               types.MomentAction,
		ActionVerb:               extractActionVerb(strings.TrimSpace(instr.Title)),
		RoomLocation:             room,
		SequenceOrder:            seq,
		EstimatedDurationSeconds: &duration,
		Tags:                     datatypes.JSON(tagsRaw),
		Keywords:                 datatypes.JSON(keywordsRaw),
		Source:                   types.SourceTaskInstruction,
		HumanVerified:            false,
		ConfidenceScore:          &confidence,
		CreatedBy:                actorID,
	}, nil
}

// extractActionVerb takes the first word of the title as the verb; a
// blank title falls back to "perform".
func extractActionVerb(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) == 0 {
		return "perform"
	}
	return strings.Trim(fields[0], ".,!?:;")
}

// extractKeywords keeps the title words long enough to be useful as
// search terms.
func extractKeywords(title string) []string {
	out := []string{}
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, ".,!?:;()")
		if len(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}
