package course

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/pkg/imaging"
)

// UploadCover resizes the image into a cover and a thumbnail, stores both and
// saves their URLs on the course.
func (s *Service) UploadCover(ctx context.Context, id uuid.UUID, actor Actor, r io.Reader) (*Course, error) {
	if s.storage == nil || s.images == nil {
		return nil, ErrCoversDisabled
	}
	c, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	cover, err := s.images.ProcessCover(r)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			return nil, ErrInvalidImage.WithMessage("Cover image exceeds the size limit")
		}
		log.Warn().Err(err).Str("course_id", id.String()).Msg("cover decode failed")
		return nil, ErrInvalidImage
	}

	// keys are versioned per upload
	version := strconv.FormatInt(s.now().UnixNano(), 36)
	coverKey, thumbKey := imaging.CoverPaths(c.ID.String(), version)

	if err := s.storage.Put(ctx, coverKey, bytes.NewReader(cover.Image), cover.ContentType); err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(cover.Thumbnail), cover.ContentType); err != nil {
		s.removeObject(ctx, coverKey)
		return nil, err
	}

	coverURL, thumbURL := s.storage.GetURL(coverKey), s.storage.GetURL(thumbKey)
	if err := s.repo.SetCover(ctx, c.ID, coverURL, thumbURL); err != nil {
		s.removeObject(ctx, coverKey)
		s.removeObject(ctx, thumbKey)
		return nil, err
	}

	c.CoverURL, c.ThumbnailURL = &coverURL, &thumbURL
	log.Info().
		Str("course_id", c.ID.String()).
		Int("width", cover.Width).
		Int("height", cover.Height).
		Msg("course cover uploaded")
	return c, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to remove orphaned cover object")
	}
}
