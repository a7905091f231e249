// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/quantro/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev     LogMode = iota // text, stderr, Info
	ModeProd                   // json, stdout, Info
	ModeSilence                // 全部丟掉；Enabled 永遠 false，不產生 Record
	ModeTrace                  // text, stderr, Debug（每一輪 cascade 都會記錄）
)

var modeNames = map[string]LogMode{
	"dev":     ModeDev,
	"prod":    ModeProd,
	"silence": ModeSilence,
	"trace":   ModeTrace,
}

// ParseLogMode 命令列用（不分大小寫）
func ParseLogMode(s string) (LogMode, error) {
	m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ModeDev, errs.Warnf("unknown log mode %q (dev|prod|silence|trace)", s)
	}
	return m, nil
}

// Logger 的建立方式：
//   - NewDefaultLogger / NewDefaultAsyncLogger：依 LogMode 的預設 handler
//   - NewLogger(h)：自行提供 slog.Handler
//   - NewAsync：LogMode 預設 handler 外包一層 AsyncHandler，並回傳 handler 以便 Close
//
// Board 在 Simulator 的熱迴圈內呼叫 Debug，模擬時請用 ModeSilence。

func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger h 為 nil 時使用 ModeDev
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

// AsyncHandler Handle 只把 Record 放進 queue，由背景 goroutine 交給 next 寫出。
// queue 滿了或 Close 之後的 Record 直接丟掉並計數；WithAttrs / WithGroup 共用同一個 queue。
// next 回傳的 error 會被忽略（slog.Logger 本來就不看 Handle 的 error）。
type AsyncHandler struct {
	next slog.Handler
	q    *recordQueue
}

type queuedRecord struct {
	ctx context.Context
	rec slog.Record
	out slog.Handler
}

type recordQueue struct {
	items   chan queuedRecord
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewAsyncHandler buf <= 0 時使用 1024
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &recordQueue{
		items: make(chan queuedRecord, buf),
		done:  make(chan struct{}),
	}
	q.wg.Go(q.run)
	return &AsyncHandler{next: next, q: q}
}

func (q *recordQueue) run() {
	for {
		select {
		case it := <-q.items:
			_ = it.out.Handle(it.ctx, it.rec)
		case <-q.done:
			q.drain()
			return
		}
	}
}

func (q *recordQueue) drain() {
	for {
		select {
		case it := <-q.items:
			_ = it.out.Handle(it.ctx, it.rec)
		default:
			return
		}
	}
}

func (q *recordQueue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

func (h *AsyncHandler) Ready() bool { return h != nil && h.q != nil }

// Dropped 因 queue 滿或已 Close 而丟掉的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止收新的 Record，寫完 queue 內剩下的才返回
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.stop.Do(func() { close(h.q.done) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	if h.q.closed() {
		h.q.dropped.Add(1)
		return nil
	}
	// Record 內的 attrs 會被呼叫端重用，跨 goroutine 前先 Clone
	select {
	case h.q.items <- queuedRecord{ctx: ctx, rec: r.Clone(), out: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})
	case ModeTrace:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
}
