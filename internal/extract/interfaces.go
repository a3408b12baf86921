package extract

import (
	"context"

	"github.com/vidmux/vidmux/internal/model"
)

// Extractor defines the interface for the metadata extraction service.
type Extractor interface {
	VideoInfo(ctx context.Context, url string) (*model.VideoInfo, error)
}
