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

// Package svrcfg server 啟動所需的設定；Valid 會補上預設值。
package svrcfg

import (
	"log/slog"
	"strings"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/server/logger"
)

const (
	DefaultAddr        = ":5810"
	defaultMaxSimTicks = 2_000_000
	maxBoardPoolSz     = 64
)

type SvrCfg struct {
	Addr        string // 空字串使用 DefaultAddr
	Log         *slog.Logger
	BoardPoolSz int // 每個模式的 BoardPool 大小，1..64
	MaxSimTicks int // /v1/sim 單次請求的 ticks*workers 上限；0 使用預設
	Quantro     *quantro.Quantro
}

// Valid 檢查必要欄位並補預設值。Log 為 nil 時給一個 dev 模式的 async logger。
func (sc *SvrCfg) Valid() error {
	if sc.Quantro == nil {
		return errs.NewFatal("quantro is required")
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if !strings.Contains(sc.Addr, ":") {
		return errs.Warnf("invalid listen address %q", sc.Addr)
	}
	switch h := handlerOf(sc.Log).(type) {
	case nil:
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	case *logger.AsyncHandler:
		if !h.Ready() {
			return errs.NewFatal("async log handler is not ready")
		}
	}
	sc.BoardPoolSz = min(maxBoardPoolSz, max(1, sc.BoardPoolSz))
	if sc.MaxSimTicks <= 0 {
		sc.MaxSimTicks = defaultMaxSimTicks
	}
	return nil
}

func handlerOf(log *slog.Logger) slog.Handler {
	if log == nil {
		return nil
	}
	return log.Handler()
}
