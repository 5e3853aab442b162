// Package render delivers unified stories to an output channel.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sells-group/newswatch/internal/model"
)

// Renderer emits unified stories one at a time so a single delivery
// failure does not lose the rest of the batch.
type Renderer interface {
	// Render delivers one story.
	Render(ctx context.Context, item model.UnifiedItem) error
	// Finish closes out the batch after the last story.
	Finish(ctx context.Context, emitted int) error
}

const separator = "────────────────────────────────────────────────────────────"

// ConsoleRenderer writes Hebrew-formatted stories to a writer.
type ConsoleRenderer struct {
	w     io.Writer
	count int
}

// NewConsole creates a console renderer writing to w.
func NewConsole(w io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{w: w}
}

// Render writes one story, preceded by a separator after the first.
func (r *ConsoleRenderer) Render(_ context.Context, item model.UnifiedItem) error {
	var b strings.Builder
	if r.count > 0 {
		b.WriteString("\n" + separator + "\n")
	}
	b.WriteString(FormatItem(item))
	b.WriteString("\n")

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return err
	}
	r.count++
	return nil
}

// Finish writes the batch summary line, or a no-results notice when
// nothing was emitted.
func (r *ConsoleRenderer) Finish(_ context.Context, emitted int) error {
	if emitted == 0 {
		_, err := io.WriteString(r.w, "לא נמצאו כתבות רלוונטיות.\n")
		return err
	}
	_, err := fmt.Fprintf(r.w, "\n%s\nסה״כ: %d כתבות\n", separator, emitted)
	return err
}
