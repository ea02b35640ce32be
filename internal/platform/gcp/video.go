package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/ctxutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type Video interface {
	DetectFaces(ctx context.Context, gcsURI string) (*FaceDetectionResult, error)
	AnnotateContent(ctx context.Context, gcsURI string) (*ContentAnnotationResult, error)
	Close() error
}

type FaceDetectionResult struct {
	FaceCount  int                    `json:"face_count"`
	Timestamps []domain.FaceTimestamp `json:"timestamps"`
}

type LabelHit struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ContentAnnotationResult carries the raw signal used for room/action
// classification: segment labels, tracked objects, on-screen text, shot
// boundaries, and overall duration derived from the longest segment.
type ContentAnnotationResult struct {
	SegmentLabels   []LabelHit `json:"segment_labels"`
	Objects         []LabelHit `json:"objects"`
	TextSnippets    []string   `json:"text_snippets"`
	ShotCount       int        `json:"shot_count"`
	DurationSeconds float64    `json:"duration_seconds"`
}

type videoService struct {
	log        *logger.Logger
	client     *videointelligence.Client
	maxRetries int
}

func NewVideo(log *logger.Logger) (Video, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Video")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}

	return &videoService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *videoService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *videoService) DetectFaces(ctx context.Context, gcsURI string) (*FaceDetectionResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := &vipb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []vipb.Feature{vipb.Feature_FACE_DETECTION},
		VideoContext: &vipb.VideoContext{
			FaceDetectionConfig: &vipb.FaceDetectionConfig{
				IncludeBoundingBoxes: false,
				IncludeAttributes:    false,
			},
		},
	}

	resp, err := s.retryAnnotate(ctx, func() (*vipb.AnnotateVideoResponse, error) {
		op, err := s.client.AnnotateVideo(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("videointelligence face detection: %w", err)
	}

	out := &FaceDetectionResult{Timestamps: []domain.FaceTimestamp{}}
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return out, nil
	}

	for _, fa := range resp.AnnotationResults[0].FaceDetectionAnnotations {
		if fa == nil || len(fa.Tracks) == 0 {
			continue
		}
		// One timestamp per detected face: the first track's segment.
		tr := fa.Tracks[0]
		if tr == nil || tr.Segment == nil {
			continue
		}
		out.FaceCount++
		out.Timestamps = append(out.Timestamps, domain.FaceTimestamp{
			StartTime: durToSec(tr.Segment.StartTimeOffset),
			EndTime:   durToSec(tr.Segment.EndTimeOffset),
		})
	}
	return out, nil
}

func (s *videoService) AnnotateContent(ctx context.Context, gcsURI string) (*ContentAnnotationResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := &vipb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []vipb.Feature{
			vipb.Feature_LABEL_DETECTION,
			vipb.Feature_OBJECT_TRACKING,
			vipb.Feature_TEXT_DETECTION,
			vipb.Feature_SHOT_CHANGE_DETECTION,
		},
		VideoContext: &vipb.VideoContext{
			LabelDetectionConfig: &vipb.LabelDetectionConfig{
				LabelDetectionMode: vipb.LabelDetectionMode_SHOT_AND_FRAME_MODE,
			},
			TextDetectionConfig: &vipb.TextDetectionConfig{},
		},
	}

	resp, err := s.retryAnnotate(ctx, func() (*vipb.AnnotateVideoResponse, error) {
		op, err := s.client.AnnotateVideo(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("videointelligence content annotation: %w", err)
	}

	out := &ContentAnnotationResult{
		SegmentLabels: []LabelHit{},
		Objects:       []LabelHit{},
		TextSnippets:  []string{},
	}
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return out, nil
	}
	ar := resp.AnnotationResults[0]

	for _, la := range ar.SegmentLabelAnnotations {
		if la == nil || la.Entity == nil || strings.TrimSpace(la.Entity.Description) == "" {
			continue
		}
		conf := 0.0
		for _, seg := range la.Segments {
			if seg == nil {
				continue
			}
			if float64(seg.Confidence) > conf {
				conf = float64(seg.Confidence)
			}
			if seg.Segment != nil {
				if e := durToSec(seg.Segment.EndTimeOffset); e > out.DurationSeconds {
					out.DurationSeconds = e
				}
			}
		}
		out.SegmentLabels = append(out.SegmentLabels, LabelHit{
			Description: la.Entity.Description,
			Confidence:  conf,
		})
	}

	for _, oa := range ar.ObjectAnnotations {
		if oa == nil || oa.Entity == nil || strings.TrimSpace(oa.Entity.Description) == "" {
			continue
		}
		out.Objects = append(out.Objects, LabelHit{
			Description: oa.Entity.Description,
			Confidence:  float64(oa.Confidence),
		})
		if oa.GetSegment() != nil {
			if e := durToSec(oa.GetSegment().EndTimeOffset); e > out.DurationSeconds {
				out.DurationSeconds = e
			}
		}
	}

	for _, ta := range ar.TextAnnotations {
		if ta == nil || strings.TrimSpace(ta.Text) == "" {
			continue
		}
		out.TextSnippets = append(out.TextSnippets, ta.Text)
	}

	out.ShotCount = len(ar.ShotAnnotations)
	for _, sh := range ar.ShotAnnotations {
		if sh == nil {
			continue
		}
		if e := durToSec(sh.EndTimeOffset); e > out.DurationSeconds {
			out.DurationSeconds = e
		}
	}

	return out, nil
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (s *videoService) retryAnnotate(ctx context.Context, fn func() (*vipb.AnnotateVideoResponse, error)) (*vipb.AnnotateVideoResponse, error) {
	backoff := 750 * time.Millisecond
	var last error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
