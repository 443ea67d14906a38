package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
)

// RenderService bounds renderer input and caches rendered output.
type RenderService struct {
	Renderer Renderer
	Cache    RenderCache // optional
	MaxSize  int
	Logger   *logrus.Logger
}

func NewRenderService(r Renderer, maxSize int, logger *logrus.Logger) *RenderService {
	return &RenderService{Renderer: r, MaxSize: maxSize, Logger: logger}
}

func cacheKey(source string, format render.Format) string {
	sum := sha256.Sum256([]byte(format.String() + "\x00" + source))
	return "render:" + hex.EncodeToString(sum[:])
}

func (s *RenderService) Render(ctx context.Context, source string, format render.Format) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &errs.RenderError{Reason: "source text is empty"}
	}
	if utf8.RuneCountInString(source) > s.MaxSize {
		return nil, &errs.RenderError{Reason: fmt.Sprintf("source text exceeds %d characters", s.MaxSize)}
	}

	key := cacheKey(source, format)
	if s.Cache != nil {
		out, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			s.Logger.WithError(err).Warn("render cache read failed")
		} else if ok {
			return out, nil
		}
	}

	out, err := s.Renderer.Render(ctx, source, format)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, out); err != nil {
			s.Logger.WithError(err).Warn("render cache write failed")
		}
	}
	return out, nil
}
