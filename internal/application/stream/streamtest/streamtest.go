// Package streamtest 提供流式事件相关的测试替身
package streamtest

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/workflow/port"
)

// Source 按顺序返回 Chunks，之后返回 Err（为空时返回 io.EOF）
type Source struct {
	Chunks []string
	Err    error

	mu     sync.Mutex
	pos    int
	closed bool
}

// NewSource 创建只产出给定文本块的 Source
func NewSource(chunks ...string) *Source {
	return &Source{Chunks: chunks}
}

func (s *Source) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos < len(s.Chunks) {
		c := s.Chunks[s.pos]
		s.pos++
		return c, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed 是否已被关闭
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// TextGenerator 记录请求并返回预设 Source 的生成器
type TextGenerator struct {
	GenerateTextFn func(ctx context.Context, req port.TextRequest) (stream.TextSource, error)

	mu       sync.Mutex
	requests []port.TextRequest
}

// Replying 返回固定文本块的生成器
func Replying(chunks ...string) *TextGenerator {
	return &TextGenerator{
		GenerateTextFn: func(context.Context, port.TextRequest) (stream.TextSource, error) {
			return NewSource(chunks...), nil
		},
	}
}

func (g *TextGenerator) GenerateText(ctx context.Context, req port.TextRequest) (stream.TextSource, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return g.GenerateTextFn(ctx, req)
}

// Requests 已收到的请求
func (g *TextGenerator) Requests() []port.TextRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]port.TextRequest(nil), g.requests...)
}

// Drain 读取全部事件直到通道关闭
func Drain(t testing.TB, ch <-chan stream.Event) []stream.Event {
	t.Helper()
	var events []stream.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatal("stream did not close")
			return events
		}
	}
}

// Names 事件名称序列
func Names(events []stream.Event) []stream.EventName {
	names := make([]stream.EventName, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// Last 最后一个事件
func Last(events []stream.Event) stream.Event {
	if len(events) == 0 {
		return stream.Event{}
	}
	return events[len(events)-1]
}
