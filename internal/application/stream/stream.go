// Package stream 将大模型的流式文本转换为 progress/text/complete/error 事件序列
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "xhs-content-ai-api/pkg/errors"
)

// EventName 事件名称
type EventName string

const (
	EventProgress EventName = "progress"
	EventText     EventName = "text"
	EventComplete EventName = "complete"
	EventError    EventName = "error"
)

// Event 推送给传输层的事件，Data 会被序列化为一行 JSON
type Event struct {
	Name EventName
	Data any
}

// Progress 开始/进度事件数据
type Progress struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TextDelta 文本块事件数据，Accumulated 为截至当前的完整文本
type TextDelta struct {
	Chunk       string `json:"chunk"`
	Accumulated string `json:"accumulated"`
}

// Failure 错误事件数据
type Failure struct {
	Error string `json:"error"`
}

// TextSource 逐块产出文本的上游，结束时 Recv 返回 io.EOF
type TextSource interface {
	Recv() (string, error)
	Close()
}

// Opener 打开一个文本流
type Opener func(ctx context.Context) (TextSource, error)

// Finalizer 根据最终累积文本构造 complete 事件数据
type Finalizer func(accumulated string) any

// IsTerminal 是否为终止事件
func (e Event) IsTerminal() bool {
	return e.Name == EventComplete || e.Name == EventError
}

// ErrorEvent 构造错误事件，应用错误使用其面向用户的信息与修复建议
func ErrorEvent(err error) Event {
	return Event{Name: EventError, Data: Failure{Error: Message(err)}}
}

// Message 错误的展示文本
func Message(err error) string {
	if apperrors.IsAppError(err) {
		appErr := apperrors.AsAppError(err)
		if appErr.Detail != "" {
			return appErr.Message + "\n" + appErr.Detail
		}
		return appErr.Message
	}
	return err.Error()
}

// Single 返回只包含一个事件的已关闭通道
func Single(e Event) <-chan Event {
	out := make(chan Event, 1)
	out <- e
	close(out)
	return out
}

// Aggregate 读取 src 直到结束，每收到一块发送一次 text 事件，
// 结束时发送唯一的 complete 事件；出错时只发送一个 error 事件并停止。
// 消费方取消 ctx 即可放弃该流，src 总会被关闭。
func Aggregate(ctx context.Context, src TextSource, finalize Finalizer) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer src.Close()
		guard(ctx, out, func() { pump(ctx, src, finalize, out) })
	}()
	return out
}

// Run 先发送 start 进度事件，再打开文本流并聚合；打开失败时发送 error 事件
func Run(ctx context.Context, open Opener, start Progress, finalize Finalizer) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		guard(ctx, out, func() {
			if !send(ctx, out, Event{Name: EventProgress, Data: start}) {
				return
			}
			src, err := open(ctx)
			if err != nil {
				send(ctx, out, ErrorEvent(err))
				return
			}
			defer src.Close()
			pump(ctx, src, finalize, out)
		})
	}()
	return out
}

// Collect 非流式读取全部文本
func Collect(ctx context.Context, src TextSource) (string, error) {
	defer src.Close()

	var acc strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return acc.String(), err
		}
		chunk, err := src.Recv()
		if errors.Is(err, io.EOF) {
			return acc.String(), nil
		}
		if err != nil {
			return acc.String(), err
		}
		acc.WriteString(chunk)
	}
}

func pump(ctx context.Context, src TextSource, finalize Finalizer, out chan<- Event) {
	var acc strings.Builder
	for {
		if ctx.Err() != nil {
			return
		}
		chunk, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			send(ctx, out, ErrorEvent(err))
			return
		}
		acc.WriteString(chunk)
		if !send(ctx, out, Event{Name: EventText, Data: TextDelta{Chunk: chunk, Accumulated: acc.String()}}) {
			return
		}
	}

	text := acc.String()
	var data any = map[string]string{"text": text}
	if finalize != nil {
		data = finalize(text)
	}
	send(ctx, out, Event{Name: EventComplete, Data: data})
}

// guard 将 panic 转为 error 事件
func guard(ctx context.Context, out chan<- Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			send(ctx, out, ErrorEvent(fmt.Errorf("stream panic: %v", r)))
		}
	}()
	fn()
}

func send(ctx context.Context, out chan<- Event, e Event) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
