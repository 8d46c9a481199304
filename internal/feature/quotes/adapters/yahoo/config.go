// Package yahoo はYahoo Financeの相場エンドポイントのクライアントを提供します。
package yahoo

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はYahoo Financeクライアントの設定を保持します。
type Config struct {
	PrimaryURL   string        `envconfig:"PRIMARY_URL" default:"https://query1.finance.yahoo.com"`   // 優先度1のチャートAPIホスト
	SecondaryURL string        `envconfig:"SECONDARY_URL" default:"https://query2.finance.yahoo.com"` // 優先度2のチャートAPIホスト
	PageURL      string        `envconfig:"PAGE_URL" default:"https://finance.yahoo.com"`             // 最終手段のHTMLページ
	MarketSuffix string        `envconfig:"MARKET_SUFFIX" default:".NS"`                              // 上流に渡す際に付与する市場コード
	UserAgent    string        `envconfig:"USER_AGENT" default:"Mozilla/5.0 (compatible; papertrade/1.0)"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s"` // HTTPリクエストタイムアウト
}

// LoadConfig はYAHOO_*環境変数から設定を読み込みます。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("YAHOO", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// upstreamSymbol appends the market suffix unless the symbol already carries
// one or is an index (e.g. "^NSEI").
func (c Config) upstreamSymbol(symbol string) string {
	if c.MarketSuffix == "" || strings.Contains(symbol, ".") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + c.MarketSuffix
}
