package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/tactipad/internal/sensor"
)

// StreamHandler serves the normalized depth map as MJPEG.
type StreamHandler struct {
	preview  sensor.Previewer
	logger   *slog.Logger
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler for the given device.
func NewStreamHandler(preview sensor.Previewer, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{preview: preview, logger: logger, interval: 100 * time.Millisecond}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.writeFrame(w); err != nil {
			h.logger.Debug("preview frame skipped", "error", err)
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	img, err := h.preview.Preview()
	if err != nil {
		return err
	}
	defer img.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(*img, &colored, gocv.ColormapJet)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, colored)
	if err != nil {
		return err
	}
	defer buf.Close()

	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
	w.Write(buf.GetBytes())
	fmt.Fprintf(w, "\r\n")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
