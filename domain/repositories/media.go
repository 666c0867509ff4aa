package repositories

import (
	"context"

	"github.com/viralforge/server/domain"
)

// ImageGenerator renders an image from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req domain.ImageGenRequest) (domain.ImageResult, error)
}

// ImageEditor applies an instruction to a source image.
type ImageEditor interface {
	EditImage(ctx context.Context, req domain.ImageEditRequest) (domain.ImageResult, error)
}

// VideoGenerator produces a video clip. Generation is long running; the
// implementation polls to a terminal state and only then returns.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req domain.VideoGenRequest) (domain.VideoResult, error)
}
