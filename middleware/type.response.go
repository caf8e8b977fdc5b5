package middleware

import (
	"sync"
	"time"
)

type Response struct {
	Data    any
	Message string
	Code    int
	Error   error
}

type ResponseAPIDebug struct {
	Version   string    `json:"version"`
	Error     *string   `json:"error"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	RuntimeMs int64     `json:"runtimeMs"`
}

type ResponseAPI struct {
	RequestID string            `json:"requestId"`
	Data      any               `json:"data"`
	Message   string            `json:"message"`
	Debug     *ResponseAPIDebug `json:"debug,omitempty"`
}

// StreamChunk is one encoded piece of a streamed response. JSONBuf
// points into the shared buffer pool and is handed back to it by the
// stream sender once written.
type StreamChunk struct {
	JSONBuf *[]byte
	Error   error
}

// StreamResponse configures a chunked JSON array response.
type StreamResponse struct {
	TotalCount int64
	ChunkChan  <-chan StreamChunk
	Error      error
	Code       int
}

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 4096)
		return &buf
	},
}

// GetBuf hands out a pooled buffer with zero length.
func GetBuf() *[]byte {
	buf := jsonBufferPool.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// PutBuf returns a buffer to the pool.
func PutBuf(buf *[]byte) {
	jsonBufferPool.Put(buf)
}
