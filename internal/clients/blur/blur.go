package blur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// Client talks to the external face-blur service. The service reads the
// source object out of the bucket, renders a blurred cut over the given
// face windows, and writes it back under outputPath.
type Client interface {
	BlurVideo(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	SourcePath string                 `json:"sourcePath"`
	OutputPath string                 `json:"outputPath"`
	Faces      []domain.FaceTimestamp `json:"faces"`
	Bucket     string                 `json:"bucket"`
}

type Response struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"outputPath"`
	URL        string `json:"url"`
	Error      string `json:"error,omitempty"`
}

type client struct {
	log     *logger.Logger
	httpc   *http.Client
	baseURL string
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("BLUR_SERVICE_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing BLUR_SERVICE_URL")
	}
	timeout := envutil.Duration("BLUR_SERVICE_TIMEOUT", 5*time.Minute)

	return &client{
		log:     log.With("service", "BlurClient"),
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

func (c *client) BlurVideo(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.SourcePath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return nil, fmt.Errorf("sourcePath and outputPath required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/blur", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("blur service request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("blur service read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blur service status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("blur service decode: %w", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "blur service reported failure"
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return &out, nil
}
