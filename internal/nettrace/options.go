package nettrace

import (
	"fmt"
	"io"
)

// config collects the functional options passed to Read. There is no other
// configuration surface: no environment variables, no config files.
type config struct {
	onProgress  func(bytesRead, totalBytes int64)
	debugWriter io.Writer
}

// Option configures a Read call.
type Option func(*config)

// WithProgress registers a callback invoked as bytes are consumed from the
// input, throttled to one call per top-level container object to avoid
// excessive callbacks. totalBytes is the file size when the input is an
// *os.File and -1 for any other reader.
func WithProgress(fn func(bytesRead, totalBytes int64)) Option {
	return func(c *config) { c.onProgress = fn }
}

// WithDebugWriter directs line-oriented commentary to w: a note for each
// dropped process symbol and a final line with the event, distinct
// metadata and distinct stack counts. Bytes consumed and sample
// stacks/symbols are not written.
func WithDebugWriter(w io.Writer) Option {
	return func(c *config) { c.debugWriter = w }
}

func (c *config) debugf(format string, args ...any) {
	if c.debugWriter == nil {
		return
	}
	fmt.Fprintf(c.debugWriter, format+"\n", args...)
}

func (c *config) reportProgress(bytesRead, totalBytes int64) {
	if c.onProgress != nil {
		c.onProgress(bytesRead, totalBytes)
	}
}
