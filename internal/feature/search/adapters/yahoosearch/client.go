// Package yahoosearch はYahoo Financeの検索APIクライアントを提供します。
package yahoosearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"papertrade/internal/feature/search/domain/entity"
	"papertrade/internal/feature/search/usecase"
)

// searchResponse は /v1/finance/search のレスポンスです。
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		ExchDisp  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Client は1ホスト分の検索エンドポイントです。
type Client struct {
	name         string
	baseURL      string
	marketSuffix string
	client       *resty.Client
}

var _ usecase.OnlineSearcher = (*Client)(nil)

// NewClient は検索クライアントを生成します。marketSuffixは結果のシンボルから取り除かれます。
func NewClient(name, baseURL, marketSuffix, userAgent string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "application/json")

	return &Client{name: name, baseURL: baseURL, marketSuffix: marketSuffix, client: client}
}

// Name returns the endpoint name recorded as the result source.
func (c *Client) Name() string {
	return c.name
}

// Search はクエリに一致する銘柄を返します。
func (c *Client) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": "10",
			"newsCount":   "0",
		}).
		Get(c.baseURL + "/v1/finance/search")
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", c.name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s search: http %d", c.name, resp.StatusCode())
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%s search: decode: %w", c.name, err)
	}

	out := make([]entity.SearchResult, 0, len(body.Quotes))
	for _, q := range body.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		out = append(out, entity.SearchResult{
			Symbol:   c.localSymbol(q.Symbol),
			Name:     name,
			Exchange: exchange,
			Type:     q.QuoteType,
		})
	}
	return out, nil
}

// localSymbol strips the configured market suffix ("RELIANCE.NS" -> "RELIANCE").
func (c *Client) localSymbol(s string) string {
	if c.marketSuffix != "" && strings.HasSuffix(s, c.marketSuffix) {
		return strings.TrimSuffix(s, c.marketSuffix)
	}
	return s
}
