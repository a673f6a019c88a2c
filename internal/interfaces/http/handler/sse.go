package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseWriter writes Server-Sent Events. Headers are sent with the first event,
// so a handler can still answer with a JSON error until then.
type sseWriter struct {
	c       *gin.Context
	started bool
}

func (w *sseWriter) start() {
	if w.started {
		return
	}
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.c.Status(http.StatusOK)
	w.started = true
}

// send writes one event with a JSON data line and flushes it
func (w *sseWriter) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.start()
	if _, err := fmt.Fprintf(w.c.Writer, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}
