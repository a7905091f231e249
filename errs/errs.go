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

package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLevel 錯誤嚴重度。Fatal 代表資料或程式狀態已不可信；Warn 代表輸入有誤，可回報給呼叫端後繼續。
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (lv ErrLevel) String() string {
	switch lv {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	}
	return ""
}

var (
	// ErrParse piece literal / grid snapshot / 設定檔格式錯誤，解碼端不補預設值
	ErrParse = NewWarn("parse error")
	// ErrMergeConflict 同一格的兩個方向碼無法合併
	ErrMergeConflict = NewWarn("orientation merge conflict")
	// ErrOutOfRange 座標、尺寸或型別碼越界
	ErrOutOfRange = NewWarn("out of range")
	// ErrEmptyComponent 從非空格出發的 flood 結果為空
	ErrEmptyComponent = NewFatal("flood produced an empty component")
	ErrNotFinalized   = NewFatal("engine used before finalize")
	ErrFinalized      = NewFatal("engine already finalized")
)

// E 專案內統一的錯誤型別；Extra 放格子座標、欄位名這類附帶資訊
type E struct {
	ErrLv   ErrLevel
	Message string
	Extra   string
	Cause   error
}

func (e *E) Error() string {
	var sb strings.Builder
	sb.WriteString("errlv=")
	sb.WriteString(e.ErrLv.String())
	sb.WriteByte(' ')
	sb.WriteString(e.Message)
	if e.Extra != "" {
		sb.WriteString(" | extra: ")
		sb.WriteString(e.Extra)
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, " (cause: %v)", e.Cause)
	}
	return sb.String()
}

func (e *E) Unwrap() error { return e.Cause }

func NewFatal(msg string) *E { return &E{ErrLv: Fatal, Message: msg} }

func NewWarn(msg string) *E { return &E{ErrLv: Warn, Message: msg} }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

func NewWithExtra(lv ErrLevel, msg string, extra string) *E {
	return &E{ErrLv: lv, Message: msg, Extra: extra}
}

// Wrap 包裝下層錯誤。cause 鏈上有 *E 時沿用它的等級，否則（標準庫、三方套件）一律 Fatal；
// 可預期的輸入錯誤請直接 NewWarn，不要 Wrap。
func Wrap(cause error, msg string) *E {
	lv := Fatal
	if e, ok := AsErr(cause); ok {
		lv = e.ErrLv
	}
	return &E{ErrLv: lv, Message: msg, Cause: cause}
}

func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// Parsef errors.Is(err, ErrParse) 成立
func Parsef(format string, a ...any) *E {
	return Wrap(ErrParse, fmt.Sprintf(format, a...))
}

// Conflictf errors.Is(err, ErrMergeConflict) 成立
func Conflictf(format string, a ...any) *E {
	return Wrap(ErrMergeConflict, fmt.Sprintf(format, a...))
}

func AsErr(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}

// LevelOf err 鏈上第一個 *E 的等級；不是 *E 的錯誤視為 Fatal，nil 為 None
func LevelOf(err error) ErrLevel {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.ErrLv
	}
	return Fatal
}
