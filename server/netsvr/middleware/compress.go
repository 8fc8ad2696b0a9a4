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

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// acceptsEncoding 解析 Accept-Encoding，q=0 視為拒絕。
func acceptsEncoding(header, enc string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), enc) {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

// CompressConfig 為新建壓縮器使用的等級；池中重用的壓縮器沿用建立時的等級。
//
// MinSize 以下的回應原樣送出，不帶 Content-Encoding。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	MinSize   int
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	MinSize:   1024,
}

// --- Pools ---
var (
	gzipPool sync.Pool
	zstdPool sync.Pool
)

// encoder 統一 gzip.Writer 與 zstd.Encoder 的操作。
type encoder interface {
	io.Writer
	Flush() error
}

// --- Zstd Logic ---
func getZstdWriter(w io.Writer) *zstd.Encoder {
	if v := zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw
	}
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return zw
}

func releaseZstdWriter(zw *zstd.Encoder, discard bool) {
	if discard {
		zw.Reset(io.Discard)
	}
	_ = zw.Close()
	zstdPool.Put(zw)
}

// --- Gzip Logic ---
func getGzipWriter(w io.Writer) *gzip.Writer {
	if v := gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw
	}
	gw, _ := gzip.NewWriterLevel(w, DefaultCompressConfig.GzipLevel)
	return gw
}

func releaseGzipWriter(gw *gzip.Writer, discard bool) {
	if discard {
		gw.Reset(io.Discard)
	}
	_ = gw.Close()
	gzipPool.Put(gw)
}

// --- ResponseWriter Wrapper ---

// compressResponseWriter 先緩衝輸出，累積到 minSize 才決定壓縮；
// 決定之前 status 與 header 都還沒送出。
type compressResponseWriter struct {
	http.ResponseWriter
	encoding string // "zstd" 或 "gzip"
	minSize  int

	status  int
	buf     []byte
	decided bool
	enc     encoder // 決定壓縮後才取得
}

// begin 送出 header；compress 為 false 時之後的 body 原樣寫入底層。
func (cw *compressResponseWriter) begin(compress bool) {
	cw.decided = true
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	h := cw.Header()
	if isNoBodyStatus(cw.status) {
		compress = false
	} else {
		h.Add("Vary", "Accept-Encoding")
	}
	// handler 自行設定了 Content-Encoding 時不再壓縮
	if compress && h.Get("Content-Encoding") == "" {
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", http.DetectContentType(cw.buf))
		}
		h.Del("Content-Length")
		h.Set("Content-Encoding", cw.encoding)
		switch cw.encoding {
		case "zstd":
			cw.enc = getZstdWriter(cw.ResponseWriter)
		default:
			cw.enc = getGzipWriter(cw.ResponseWriter)
		}
	}
	cw.ResponseWriter.WriteHeader(cw.status)
}

// drain 把緩衝內容寫到目前的輸出端。
func (cw *compressResponseWriter) drain() error {
	if len(cw.buf) == 0 {
		return nil
	}
	b := cw.buf
	cw.buf = nil
	if cw.enc != nil {
		_, err := cw.enc.Write(b)
		return err
	}
	_, err := cw.ResponseWriter.Write(b)
	return err
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	if cw.decided || cw.status != 0 {
		return
	}
	// 1xx 為中間回應，不影響最終 status
	if code >= 100 && code < 200 {
		cw.ResponseWriter.WriteHeader(code)
		return
	}
	cw.status = code
	// 204/304 沒有 body，直接送出
	if isNoBodyStatus(code) {
		cw.begin(false)
	}
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.decided {
		if cw.enc != nil {
			return cw.enc.Write(b)
		}
		return cw.ResponseWriter.Write(b)
	}
	cw.buf = append(cw.buf, b...)
	if len(cw.buf) >= cw.minSize {
		cw.begin(true)
		if err := cw.drain(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// Flush 視為串流：尚未決定時直接以壓縮開始。
func (cw *compressResponseWriter) Flush() {
	if !cw.decided {
		cw.begin(true)
	}
	_ = cw.drain()
	if cw.enc != nil {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// finish 在 handler 正常返回後呼叫：未達 minSize 的回應原樣送出。
func (cw *compressResponseWriter) finish() {
	if !cw.decided {
		if cw.status == 0 && len(cw.buf) == 0 {
			return
		}
		cw.begin(false)
	}
	_ = cw.drain()
}

// release 歸還壓縮器；handler panic 時丟棄尚未寫出的 footer。
func (cw *compressResponseWriter) release(discard bool) {
	switch zw := cw.enc.(type) {
	case *zstd.Encoder:
		releaseZstdWriter(zw, discard)
	case *gzip.Writer:
		releaseGzipWriter(zw, discard)
	}
	cw.enc = nil
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressResponseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := cw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return errors.New("underlying response writer does not support Pusher")
}

// --- Middleware 入口 ---

// Compression 依 Accept-Encoding 選擇 zstd 優先、其次 gzip；
// 小於 DefaultCompressConfig.MinSize 的回應不壓縮。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// [Guard 1] WebSocket / Head
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}

		// [Guard 2] 避免二次壓縮
		if w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		accept := r.Header.Get("Accept-Encoding")
		var encoding string
		switch {
		case acceptsEncoding(accept, "zstd"):
			encoding = "zstd"
		case acceptsEncoding(accept, "gzip"):
			encoding = "gzip"
		default:
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressResponseWriter{ResponseWriter: w, encoding: encoding, minSize: DefaultCompressConfig.MinSize}
		completed := false
		defer func() {
			// panic 時緩衝內容不送出，交給外層 Recover 回應
			cw.release(!completed)
		}()
		next.ServeHTTP(cw, r)
		cw.finish()
		completed = true
	})
}
