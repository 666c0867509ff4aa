package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
)

// pollUntilDone drives a long-running operation to a terminal state with a
// fixed delay between polls and a hard attempt cap. The sleep function is
// injected so tests can fast-forward. No cancellation other than ctx applies:
// once started a poll runs to completion, error or exhaustion.
func pollUntilDone(ctx context.Context, sleep func(context.Context, time.Duration) error, interval time.Duration, maxAttempts int, poll func(context.Context) (bool, error)) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		done, err := poll(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
	return fmt.Errorf("operation not finished after %d attempts", maxAttempts)
}

// GenerateVideo starts a video generation and polls it to a terminal state.
func (s *Studio) GenerateVideo(ctx context.Context, req domain.VideoGenRequest) (domain.VideoResult, error) {
	op, err := s.client.Models.GenerateVideos(ctx, ModelVeo, req.Prompt, nil, videoConfig(req))
	if err != nil {
		return domain.VideoResult{}, &domain.TransportError{Op: "generate video", Err: err}
	}

	err = pollUntilDone(ctx, s.sleep, s.pollInterval, s.pollMaxAttempts, func(ctx context.Context) (bool, error) {
		if op.Done {
			return true, nil
		}
		op, err = s.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return false, &domain.TransportError{Op: "poll video generation", Err: err}
		}
		return op.Done, nil
	})
	if err != nil {
		if domain.IsTransport(err) {
			return domain.VideoResult{}, err
		}
		return domain.VideoResult{}, &domain.TransportError{Op: "generate video", Err: err}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return domain.VideoResult{}, &domain.NormalizationError{Reason: "video operation finished without a clip"}
	}

	uri := op.Response.GeneratedVideos[0].Video.URI
	if uri == "" {
		return domain.VideoResult{}, &domain.NormalizationError{Reason: "video clip has no locator"}
	}
	s.logger.Info("Video generation finished", zap.String("uri", uri))
	return domain.VideoResult{URI: uri}, nil
}
