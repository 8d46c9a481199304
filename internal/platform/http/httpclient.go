// Package http は上流の相場APIに使うHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig は上流クライアントの設定です。ゼロ値の項目は既定値を使います。
type ClientConfig struct {
	Timeout         time.Duration // リクエスト全体のタイムアウト
	UserAgent       string        // リクエストに未設定の場合に付与する
	MaxConnsPerHost int           // 同一ホストへの同時接続数の上限
}

const (
	defaultTimeout         = 15 * time.Second
	defaultMaxConnsPerHost = 8
)

// NewHTTPClient は上流ホスト向けに設定されたHTTPクライアントを作成します。
//
// 相場APIのホストは少数(query1, query2, ページ)なので、MaxIdleConnsPerHostを
// MaxConnsPerHostに揃えて接続を使い回します。http.DefaultClientにはタイムアウトが
// ないため使わないこと。
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = defaultMaxConnsPerHost
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4 * cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	var rt http.RoundTripper = t
	if cfg.UserAgent != "" {
		rt = &userAgentTransport{next: t, userAgent: cfg.UserAgent}
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: rt}
}

// userAgentTransport sets User-Agent on requests that do not carry one.
// Yahoo rejects the Go default agent on the HTML page.
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTripperはリクエストを変更してはならない
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(r)
}
