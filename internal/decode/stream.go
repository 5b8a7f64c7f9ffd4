package decode

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
)

// Event is one successful decode from the continuous stream.
type Event struct {
	Code   string
	Format string
	At     time.Time
}

// FrameSource is the camera/capture surface. Open acquires the underlying
// resource and returns the frame channel plus a release func. The channel is
// closed by the source when it stops producing; release must be safe to call
// after that.
type FrameSource interface {
	Open(ctx context.Context) (<-chan image.Image, func(), error)
}

// Stream decodes frames from a FrameSource continuously. Frames without a
// readable code produce nothing; every hit is delivered to the onDecode
// callback in arrival order on the stream goroutine.
type Stream struct {
	decoder *ImageDecoder
	now     func() time.Time
	logger  *slog.Logger
}

func NewStream(decoder *ImageDecoder, logger *slog.Logger) *Stream {
	return &Stream{decoder: decoder, now: time.Now, logger: logger}
}

// Start acquires the source and begins decoding. The returned stop func
// cancels decoding, waits for the goroutine to exit, and is safe to call
// more than once. The source is released on every exit path: stop, context
// cancellation, or the source closing its channel.
func (s *Stream) Start(ctx context.Context, src FrameSource, onDecode func(Event)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	frames, release, err := src.Open(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open frame source: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer release()
		for {
			select {
			case <-ctx.Done():
				return
			case img, ok := <-frames:
				if !ok {
					return
				}
				res, err := s.decoder.Decode(img)
				if err != nil {
					// Undecodable frames are the steady state.
					continue
				}
				s.logger.Debug("frame decoded", "code", res.Code, "format", res.Format)
				onDecode(Event{Code: res.Code, Format: res.Format, At: s.now()})
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return stop, nil
}
