package services

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// roomTypeKeywords maps each room class to the label vocabulary that
// votes for it. Classification is highest vote count wins.
var roomTypeKeywords = map[string][]string{
	"kitchen":     {"kitchen", "stove", "oven", "refrigerator", "sink", "countertop", "dishwasher", "microwave"},
	"bathroom":    {"bathroom", "toilet", "bathtub", "shower", "sink", "mirror", "tile"},
	"bedroom":     {"bedroom", "bed", "pillow", "mattress", "nightstand", "dresser", "closet"},
	"living_room": {"living room", "sofa", "couch", "television", "tv", "coffee table", "fireplace"},
	"dining_room": {"dining room", "dining table", "chair", "chandelier"},
	"garage":      {"garage", "car", "tool", "workbench"},
	"outdoor":     {"outdoor", "garden", "patio", "lawn", "pool", "deck"},
	"office":      {"office", "desk", "computer", "monitor", "keyboard", "chair"},
	"laundry":     {"laundry", "washing machine", "dryer", "iron"},
}

var actionTypeKeywords = map[string][]string{
	"cleaning":   {"cleaning", "wiping", "scrubbing", "mopping", "sweeping", "vacuuming", "dusting"},
	"organizing": {"organizing", "arranging", "sorting", "folding", "stacking"},
	"inspecting": {"inspecting", "checking", "examining", "looking"},
	"sanitizing": {"sanitizing", "disinfecting", "spraying"},
}

const maxObjectLabels = 20

// LabelingService drains the AI track: it annotates each claimed video,
// classifies the room and actions from the label vocabulary, and scores
// how much training signal the footage carries.
type LabelingService interface {
	ProcessBatch(ctx context.Context) (int, error)
}

type labelingService struct {
	db         *gorm.DB
	log        *logger.Logger
	mediaRepo  repos.MediaRepo
	video      gcp.Video
	batchSize  int
	staleAfter time.Duration
}

func NewLabelingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.MediaRepo,
	video gcp.Video,
) LabelingService {
	return &labelingService{
		db:         db,
		log:        baseLog.With("service", "LabelingService"),
		mediaRepo:  mediaRepo,
		video:      video,
		batchSize:  envutil.Int("AI_LABELING_BATCH_SIZE", 5),
		staleAfter: envutil.Duration("PROCESSING_STALE_AFTER", 30*time.Minute),
	}
}

func (s *labelingService) ProcessBatch(ctx context.Context) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	claimed, err := s.mediaRepo.ClaimAIPending(dbc, s.batchSize, s.staleAfter)
	if err != nil {
		return 0, err
	}
	if len(claimed) == 0 {
		return 0, nil
	}
	s.log.Info("labeling batch claimed", "count", len(claimed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for _, asset := range claimed {
		asset := asset
		g.Go(func() error {
			s.processOne(gctx, asset)
			return nil
		})
	}
	_ = g.Wait()
	return len(claimed), nil
}

func (s *labelingService) processOne(ctx context.Context, asset *types.MediaAsset) {
	dbc := dbctx.Context{Ctx: ctx}
	log := s.log.With("media_id", asset.ID)

	gsURI, err := NormalizeToGSURI(asset.StorageURL)
	if err != nil {
		log.Warn("labeling skipped: unusable storage url", "error", err)
		if dbErr := s.mediaRepo.FailAI(dbc, asset.ID, err.Error()); dbErr != nil {
			log.Error("record labeling failure", "error", dbErr)
		}
		return
	}

	ann, err := s.video.AnnotateContent(ctx, gsURI)
	if err != nil {
		log.Error("content annotation failed", "error", err)
		if dbErr := s.mediaRepo.FailAI(dbc, asset.ID, err.Error()); dbErr != nil {
			log.Error("record labeling failure", "error", dbErr)
		}
		return
	}

	labels := lowercaseDescriptions(ann.SegmentLabels)
	objects := lowercaseDescriptions(ann.Objects)
	all := append(append([]string{}, labels...), objects...)

	roomType := classifyRoomType(all)
	actionTypes := classifyActionTypes(all)
	objectLabels := uniqueLimited(objects, maxObjectLabels)
	quality := qualityScore(ann)

	var duration *int
	if ann.DurationSeconds > 0 {
		d := int(math.Ceil(ann.DurationSeconds))
		duration = &d
	}

	actionsRaw, _ := json.Marshal(actionTypes)
	objectsRaw, _ := json.Marshal(objectLabels)

	if err := s.mediaRepo.CompleteAI(dbc, asset.ID, roomType,
		datatypes.JSON(actionsRaw), datatypes.JSON(objectsRaw), quality, duration); err != nil {
		log.Error("record labeling result", "error", err)
		return
	}
	log.Info("labeling completed",
		"room_type", roomType,
		"action_types", actionTypes,
		"object_count", len(objectLabels),
		"quality_score", quality,
	)
}

func lowercaseDescriptions(hits []gcp.LabelHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		d := strings.ToLower(strings.TrimSpace(h.Description))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

func classifyRoomType(labels []string) string {
	scores := map[string]int{}
	for roomType, keywords := range roomTypeKeywords {
		for _, kw := range keywords {
			for _, l := range labels {
				if strings.Contains(l, kw) {
					scores[roomType]++
					break
				}
			}
		}
	}

	best := ""
	bestScore := 0
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic tie-break
	for _, name := range names {
		if scores[name] > bestScore {
			best = name
			bestScore = scores[name]
		}
	}
	return best
}

func classifyActionTypes(labels []string) []string {
	out := []string{}
	names := make([]string, 0, len(actionTypeKeywords))
	for name := range actionTypeKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, kw := range actionTypeKeywords[name] {
			found := false
			for _, l := range labels {
				if strings.Contains(l, kw) {
					found = true
					break
				}
			}
			if found {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func uniqueLimited(values []string, limit int) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// qualityScore rates annotation richness on [0,1]: labels up to 30
// points with a 10-point bonus for high-confidence ones, objects up to
// 30, on-screen text up to 10, shot variety up to 10.
func qualityScore(ann *gcp.ContentAnnotationResult) float64 {
	score := 0

	labelScore := len(ann.SegmentLabels) * 3
	if labelScore > 30 {
		labelScore = 30
	}
	score += labelScore

	highConf := 0
	for _, l := range ann.SegmentLabels {
		if l.Confidence > 0.8 {
			highConf++
		}
	}
	bonus := highConf * 2
	if bonus > 10 {
		bonus = 10
	}
	score += bonus

	objectScore := len(ann.Objects) * 3
	if objectScore > 30 {
		objectScore = 30
	}
	score += objectScore

	textScore := len(ann.TextSnippets) * 2
	if textScore > 10 {
		textScore = 10
	}
	score += textScore

	shotScore := ann.ShotCount
	if shotScore > 10 {
		shotScore = 10
	}
	score += shotScore

	return float64(score) / 100.0
}
