// Package corefmt 盤面 snapshot 與回放紀錄共用的 byte 格式。
//
// 所有 frame 都是 uvarint(len) || payload；HTTP 傳輸時外層再包 base64url（無 padding）。
package corefmt

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zintix-labs/quantro/errs"
)

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL 解碼失敗是請求端的問題（Warn）
func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.WrapWithExtra(errs.ErrParse, "base64url", err.Error())
	}
	return b, nil
}

// EncodeHex 回放不一致時把兩邊狀態放進錯誤訊息
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// AppendFrame 把 payload 以 uvarint 長度前綴 append 到 dst
func AppendFrame(dst []byte, payload []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// SplitFrame 從 b 取出第一個 frame，回傳 payload（與 b 共用底層陣列）與剩餘的 bytes
func SplitFrame(b []byte) (payload []byte, rest []byte, err error) {
	n, size := binary.Uvarint(b)
	if size <= 0 {
		return nil, nil, errs.WrapWithExtra(errs.ErrParse, "frame", "invalid length prefix")
	}
	b = b[size:]
	if uint64(len(b)) < n {
		return nil, nil, errs.WrapWithExtra(errs.ErrParse, "frame", "truncated payload")
	}
	return b[:n], b[n:], nil
}

// WriteFrame 寫入一個 frame（多個盤面串成一個檔案時使用）
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(AppendFrame(nil, payload)); err != nil {
		return errs.Wrap(err, "write frame")
	}
	return nil
}

// ReadFrame 讀取一個 frame；maxBytes 限制不可信輸入的配置大小（0 不限制）。
// 連續讀取時請傳入同一個 *bufio.Reader。
func ReadFrame(r io.Reader, maxBytes uint64) ([]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
		r = br.(io.Reader)
	}
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errs.Wrap(err, "read frame length")
	}
	if maxBytes > 0 && n > maxBytes {
		return nil, errs.WrapWithExtra(errs.ErrOutOfRange, "read frame", "payload exceeds limit")
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, errs.Wrap(err, "read frame payload")
	}
	return out, nil
}
