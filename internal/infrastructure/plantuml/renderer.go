// Package plantuml renders diagram source by piping it through the plantuml
// command line tool.
package plantuml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
)

type runFunc func(ctx context.Context, bin string, args []string, stdin []byte) (stdout, stderr []byte, err error)

type Renderer struct {
	bin     string
	timeout time.Duration
	run     runFunc
}

func NewRenderer(bin string, timeout time.Duration) *Renderer {
	return &Renderer{bin: bin, timeout: timeout, run: execRun}
}

func execRun(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// formatFlag is the single place that maps output formats to plantuml flags.
func formatFlag(f render.Format) (string, error) {
	switch f {
	case render.Raster:
		return "-tpng", nil
	case render.Vector:
		return "-tsvg", nil
	case render.Text:
		return "-tutxt", nil
	default:
		return "", fmt.Errorf("unknown format %v", f)
	}
}

func (r *Renderer) Render(ctx context.Context, source string, format render.Format) ([]byte, error) {
	flag, err := formatFlag(format)
	if err != nil {
		return nil, &errs.RenderError{Reason: "unsupported format", Err: err}
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, stderr, err := r.run(ctx, r.bin, []string{"-pipe", "-charset", "UTF-8", flag}, []byte(source))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &errs.RenderError{Reason: "render timed out", Err: ctx.Err()}
		}
		msg := strings.TrimSpace(string(stderr))
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &errs.RenderError{Reason: "render failed", Err: err}
	}
	if len(out) == 0 {
		return nil, &errs.RenderError{Reason: "renderer produced no output"}
	}
	return out, nil
}
