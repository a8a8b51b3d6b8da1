package llm

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Base64 payloads (embedded PDFs, page images) inflate log lines to
// megabytes. Anything that may carry them through the verbose log path is
// filtered here rather than at each call site.

const base64RunThreshold = 256

var (
	dataURLPattern   = regexp.MustCompile(`data:[a-z]+/[a-z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)
	base64RunPattern = regexp.MustCompile(`[A-Za-z0-9+/]{` + fmt.Sprint(base64RunThreshold) + `,}={0,2}`)
)

// RedactBase64 replaces data URLs and long base64 runs in s with a size
// annotation so log streams and debug payloads stay readable.
func RedactBase64(s string) string {
	s = dataURLPattern.ReplaceAllStringFunc(s, func(m string) string {
		return fmt.Sprintf("[base64 %d chars]", len(m))
	})
	return base64RunPattern.ReplaceAllStringFunc(s, func(m string) string {
		return fmt.Sprintf("[base64 %d chars]", len(m))
	})
}

// CaptureWriter collects log lines for the verbose debug block, redacting
// base64 payloads as they are written. Safe for concurrent use.
type CaptureWriter struct {
	mu    sync.Mutex
	lines []string
}

// NewCaptureWriter creates an empty capture writer.
func NewCaptureWriter() *CaptureWriter {
	return &CaptureWriter{}
}

// Write implements io.Writer.
func (w *CaptureWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	w.mu.Lock()
	w.lines = append(w.lines, RedactBase64(line))
	w.mu.Unlock()
	return len(p), nil
}

// Lines returns a copy of the captured, redacted log lines.
func (w *CaptureWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}
