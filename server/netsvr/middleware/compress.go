package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級與略過的路徑
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	// SkipPaths 不壓縮的路徑前綴（/v1/metrics 這類小 JSON）
	SkipPaths []string
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	SkipPaths: []string{"/v1/metrics"},
}

// streamEncoder gzip.Writer 與 zstd.Encoder 共同的方法
type streamEncoder interface {
	io.Writer
	Reset(w io.Writer)
	Flush() error
	Close() error
}

// encoderPool 一種 Content-Encoding 一個 pool
type encoderPool struct {
	name string
	pool sync.Pool
}

func (p *encoderPool) get(w io.Writer) streamEncoder {
	enc := p.pool.Get().(streamEncoder)
	enc.Reset(w)
	return enc
}

// put 先 Close 寫出 footer；discard 為 true 時（204/304）footer 丟掉
func (p *encoderPool) put(enc streamEncoder, discard bool) {
	if discard {
		enc.Reset(io.Discard)
	}
	_ = enc.Close()
	p.pool.Put(enc)
}

func newEncoderPools(cfg CompressConfig) []*encoderPool {
	zp := &encoderPool{name: "zstd"}
	zp.pool.New = func() any {
		zw, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(cfg.ZstdLevel),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return zw
	}
	gp := &encoderPool{name: "gzip"}
	gp.pool.New = func() any {
		gw, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			gw = gzip.NewWriter(nil)
		}
		return gw
	}
	// 順序即優先權
	return []*encoderPool{zp, gp}
}

// Compression 以 DefaultCompressConfig 壓縮回應（zstd 優先，其次 gzip）
func Compression(next http.Handler) http.Handler {
	return CompressionWith(DefaultCompressConfig)(next)
}

func CompressionWith(cfg CompressConfig) func(http.Handler) http.Handler {
	pools := newEncoderPools(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := pickEncoder(pools, cfg, w, r)
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", p.name)
			w.Header().Add("Vary", "Accept-Encoding")

			cw := &compressResponseWriter{ResponseWriter: w, enc: p.get(w)}
			defer func() { p.put(cw.enc, cw.disabled) }()
			next.ServeHTTP(cw, r)
		})
	}
}

// pickEncoder 回傳 nil 表示不壓縮：HEAD、websocket、略過的路徑、已壓縮或用戶端不支援
func pickEncoder(pools []*encoderPool, cfg CompressConfig, w http.ResponseWriter, r *http.Request) *encoderPool {
	if r.Method == http.MethodHead || isUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
		return nil
	}
	for _, prefix := range cfg.SkipPaths {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return nil
		}
	}
	accept := r.Header.Get("Accept-Encoding")
	for _, p := range pools {
		if strings.Contains(accept, p.name) {
			return p
		}
	}
	return nil
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

// compressResponseWriter 遇到 1xx/204/304 時改為直接寫出，不加 Content-Encoding
type compressResponseWriter struct {
	http.ResponseWriter
	enc      streamEncoder
	disabled bool
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	h := cw.Header()
	h.Del("Content-Length")
	if (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.disabled = true
		h.Del("Content-Encoding")
		h.Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}
