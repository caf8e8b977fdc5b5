// Package stream encodes in-memory snapshots as chunked JSON. Items
// are marshaled one by one into pooled buffers and handed to the
// response middleware once a chunk passes the configured threshold, so
// large collections never build a single response-sized buffer.
package stream

import (
	"context"
	"fmt"

	json "github.com/json-iterator/go"

	"ticketdesk/middleware"
)

// Config controls chunking behavior.
type Config struct {
	// ChunkThreshold is the byte size at which a chunk is flushed.
	ChunkThreshold int
	// ChannelBuffer is the chunk channel capacity.
	ChannelBuffer int
}

// DefaultConfig returns the production configuration: 32KB chunks, a
// small channel buffer.
func DefaultConfig() Config {
	return Config{
		ChunkThreshold: 32 * 1024,
		ChannelBuffer:  4,
	}
}

// Streamer turns slices of T into middleware.StreamResponse values.
type Streamer[T any] struct {
	config Config
}

// NewStreamer creates a Streamer with the given configuration, filling
// in defaults for zero fields.
func NewStreamer[T any](config Config) *Streamer[T] {
	def := DefaultConfig()
	if config.ChunkThreshold <= 0 {
		config.ChunkThreshold = def.ChunkThreshold
	}
	if config.ChannelBuffer <= 0 {
		config.ChannelBuffer = def.ChannelBuffer
	}
	return &Streamer[T]{config: config}
}

// StreamSlice encodes items into comma-joined JSON chunks. The chunk
// channel closes when all items are sent, the context is canceled, or
// encoding fails (the error travels as the final chunk).
func (s *Streamer[T]) StreamSlice(ctx context.Context, items []T) middleware.StreamResponse {
	chunkChan := make(chan middleware.StreamChunk, s.config.ChannelBuffer)

	go func() {
		defer close(chunkChan)

		buf := middleware.GetBuf()
		flush := func() bool {
			if len(*buf) == 0 {
				return true
			}
			select {
			case chunkChan <- middleware.StreamChunk{JSONBuf: buf}:
				buf = middleware.GetBuf()
				return true
			case <-ctx.Done():
				middleware.PutBuf(buf)
				return false
			}
		}

		for _, item := range items {
			select {
			case <-ctx.Done():
				middleware.PutBuf(buf)
				return
			default:
			}

			encoded, err := json.Marshal(item)
			if err != nil {
				middleware.PutBuf(buf)
				chunkChan <- middleware.StreamChunk{
					Error: fmt.Errorf("failed to encode item: %w", err),
				}
				return
			}

			if len(*buf) > 0 {
				*buf = append(*buf, ',')
			}
			*buf = append(*buf, encoded...)

			if len(*buf) >= s.config.ChunkThreshold {
				if !flush() {
					return
				}
			}
		}

		if !flush() {
			return
		}
		middleware.PutBuf(buf)
	}()

	return middleware.StreamResponse{
		TotalCount: int64(len(items)),
		ChunkChan:  chunkChan,
		Code:       200,
	}
}
