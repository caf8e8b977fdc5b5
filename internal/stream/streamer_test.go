package stream

import (
	"context"
	"testing"

	json "github.com/json-iterator/go"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestStreamSlice(t *testing.T) {
	t.Run("items round-trip through chunks", func(t *testing.T) {
		items := []item{{1, "a"}, {2, "b"}, {3, "c"}}
		s := NewStreamer[item](DefaultConfig())

		resp := s.StreamSlice(context.Background(), items)
		if resp.TotalCount != 3 {
			t.Errorf("expected total count 3, got %d", resp.TotalCount)
		}

		body := []byte{'['}
		first := true
		for chunk := range resp.ChunkChan {
			if chunk.Error != nil {
				t.Fatalf("unexpected chunk error: %v", chunk.Error)
			}
			if !first {
				body = append(body, ',')
			}
			body = append(body, *chunk.JSONBuf...)
			first = false
		}
		body = append(body, ']')

		var got []item
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("assembled body is not valid JSON: %v (%s)", err, body)
		}
		if len(got) != 3 || got[0] != items[0] || got[2] != items[2] {
			t.Errorf("expected items back in order, got %+v", got)
		}
	})

	t.Run("small threshold produces multiple chunks", func(t *testing.T) {
		items := make([]item, 100)
		for i := range items {
			items[i] = item{ID: i, Name: "ticket"}
		}
		s := NewStreamer[item](Config{ChunkThreshold: 64, ChannelBuffer: 1})

		resp := s.StreamSlice(context.Background(), items)

		chunks := 0
		total := 0
		for chunk := range resp.ChunkChan {
			if chunk.Error != nil {
				t.Fatalf("unexpected chunk error: %v", chunk.Error)
			}
			chunks++
			total += len(*chunk.JSONBuf)
		}
		if chunks < 2 {
			t.Errorf("expected multiple chunks at a 64-byte threshold, got %d", chunks)
		}
		if total == 0 {
			t.Errorf("expected non-empty output")
		}
	})

	t.Run("empty slice closes without chunks", func(t *testing.T) {
		s := NewStreamer[item](DefaultConfig())

		resp := s.StreamSlice(context.Background(), nil)
		if resp.TotalCount != 0 {
			t.Errorf("expected total count 0, got %d", resp.TotalCount)
		}

		for chunk := range resp.ChunkChan {
			if chunk.Error != nil {
				t.Fatalf("unexpected chunk error: %v", chunk.Error)
			}
			if len(*chunk.JSONBuf) != 0 {
				t.Errorf("expected no data for empty slice, got %s", *chunk.JSONBuf)
			}
		}
	})

	t.Run("canceled context stops the stream", func(t *testing.T) {
		items := make([]item, 10000)
		s := NewStreamer[item](Config{ChunkThreshold: 16, ChannelBuffer: 1})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		resp := s.StreamSlice(ctx, items)

		// The channel must close; partial output is acceptable.
		for range resp.ChunkChan {
		}
	})
}
