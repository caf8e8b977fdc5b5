package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func setResponseDefaults(r *Response) {
	if r.Message == "" {
		r.Message = "Success"
	}
	if r.Code == 0 {
		r.Code = http.StatusOK
	}
}

func logResponseError(c *gin.Context, logger *zap.Logger, r Response) {
	if r.Error == nil {
		return
	}

	logger.Warn("request failed",
		zap.String("requestId", c.GetString("requestId")),
		zap.String("path", c.Request.URL.Path),
		zap.Int("code", r.Code),
		zap.Error(r.Error),
	)
}

func getStartTime(c *gin.Context) time.Time {
	if value, exists := c.Get("start-time"); exists {
		if t, ok := value.(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

func buildDebugInfo(c *gin.Context, r Response) *ResponseAPIDebug {
	startTime := getStartTime(c)
	endTime := time.Now()

	var errText *string
	if r.Error != nil {
		msg := r.Error.Error()
		errText = &msg
	}

	return &ResponseAPIDebug{
		Version:   c.GetString("version"),
		StartTime: startTime,
		EndTime:   endTime,
		RuntimeMs: endTime.Sub(startTime).Milliseconds(),
		Error:     errText,
	}
}

func buildResponseAPI(c *gin.Context, r Response, shouldDebug bool) ResponseAPI {
	response := ResponseAPI{
		RequestID: c.GetString("requestId"),
		Message:   r.Message,
		Data:      r.Data,
	}

	if shouldDebug {
		response.Debug = buildDebugInfo(c, r)
	}

	return response
}

func send(c *gin.Context, logger *zap.Logger, shouldDebug bool) func(r Response) {
	return func(r Response) {
		setResponseDefaults(&r)
		logResponseError(c, logger, r)
		response := buildResponseAPI(c, r, shouldDebug)

		c.Abort()
		c.JSON(r.Code, response)
	}
}

// RequestInit stamps each request with an id, client version and start
// time for the response envelope.
func RequestInit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("requestId", uuid.New().String())
		version := c.Request.Header.Get("version")
		if version == "" {
			version = "1.0.0"
		}
		c.Set("version", version)
		c.Set("start-time", time.Now())
		c.Next()
	}
}

// sendStream writes a StreamResponse as one JSON array, flushing after
// every chunk. Chunks carry comma-joined items without brackets; the
// sender owns the surrounding "[" and "]".
func sendStream(c *gin.Context, logger *zap.Logger, shouldDebug bool) func(r StreamResponse) {
	return func(r StreamResponse) {
		if r.Code == 0 {
			r.Code = http.StatusOK
		}

		if r.Error != nil {
			send(c, logger, shouldDebug)(Response{
				Code:    r.Code,
				Message: "Stream failed",
				Error:   r.Error,
			})
			return
		}

		c.Header("Content-Type", "application/json")
		if r.TotalCount >= 0 {
			c.Header("X-Total-Count", strconv.FormatInt(r.TotalCount, 10))
		}
		c.Status(r.Code)

		writer := c.Writer
		writer.Write([]byte{'['})

		first := true
		for chunk := range r.ChunkChan {
			select {
			case <-c.Request.Context().Done():
				logger.Warn("stream canceled",
					zap.String("requestId", c.GetString("requestId")),
					zap.Error(c.Request.Context().Err()),
				)
				return
			default:
			}

			if chunk.Error != nil {
				// Headers are already out; all we can do is log
				// and stop mid-array.
				logger.Warn("stream error",
					zap.String("requestId", c.GetString("requestId")),
					zap.Error(chunk.Error),
				)
				return
			}

			if chunk.JSONBuf == nil || len(*chunk.JSONBuf) == 0 {
				continue
			}

			if !first {
				writer.Write([]byte{','})
			}
			writer.Write(*chunk.JSONBuf)
			first = false

			PutBuf(chunk.JSONBuf)

			if flusher, ok := writer.(http.Flusher); ok {
				flusher.Flush()
			}
		}

		writer.Write([]byte{']'})

		if shouldDebug {
			startTime := getStartTime(c)
			logger.Debug("stream completed",
				zap.String("requestId", c.GetString("requestId")),
				zap.Int64("runtimeMs", time.Since(startTime).Milliseconds()),
				zap.Int64("totalCount", r.TotalCount),
			)
		}

		c.Abort()
	}
}

// ResponseInit installs the send and sendStream closures handlers pull
// from the gin context.
func ResponseInit(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shouldDebug := gin.Mode() == gin.DebugMode
		c.Set("send", send(c, logger, shouldDebug))
		c.Set("sendStream", sendStream(c, logger, shouldDebug))
		c.Next()
	}
}
