package jobs

import (
	"context"
	"time"

	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
	"github.com/roomloop/roomloop-backend/internal/services"
)

// PipelineWorker polls the face-detection and AI-labeling tracks and
// drains whatever is pending. Claims happen in the database, so any
// number of instances can run the same loops safely.
type PipelineWorker struct {
	log        *logger.Logger
	faceDetect services.FaceDetectionService
	labeling   services.LabelingService
	interval   time.Duration
}

func NewPipelineWorker(
	baseLog *logger.Logger,
	faceDetect services.FaceDetectionService,
	labeling services.LabelingService,
) *PipelineWorker {
	return &PipelineWorker{
		log:        baseLog.With("component", "PipelineWorker"),
		faceDetect: faceDetect,
		labeling:   labeling,
		interval:   envutil.Duration("PIPELINE_POLL_INTERVAL", 15*time.Second),
	}
}

func (w *PipelineWorker) Start(ctx context.Context) {
	go w.loop(ctx, "face_detection", func(ctx context.Context) (int, error) {
		return w.faceDetect.ProcessBatch(ctx)
	})
	go w.loop(ctx, "ai_labeling", func(ctx context.Context) (int, error) {
		return w.labeling.ProcessBatch(ctx)
	})
}

func (w *PipelineWorker) loop(ctx context.Context, track string, process func(context.Context) (int, error)) {
	log := w.log.With("track", track)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("pipeline loop stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx, log, process)
		}
	}
}

// runOnce isolates a single poll so a panicking batch cannot kill the
// loop goroutine.
func (w *PipelineWorker) runOnce(ctx context.Context, log *logger.Logger, process func(context.Context) (int, error)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline batch panic", "panic", r)
		}
	}()
	n, err := process(ctx)
	if err != nil {
		log.Warn("pipeline batch failed", "error", err)
		return
	}
	if n > 0 {
		log.Info("pipeline batch processed", "count", n)
	}
}
