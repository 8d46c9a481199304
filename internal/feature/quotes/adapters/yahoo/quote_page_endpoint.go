package yahoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/usecase"
)

// maxPageBytes はHTMLページの読み込み上限です。
const maxPageBytes = 4 << 20

// QuotePageEndpoint は公開のHTML相場ページから価格を抽出します。
// APIホストがすべて失敗した場合の最終手段です。
type QuotePageEndpoint struct {
	cfg    Config
	client *http.Client
}

var _ usecase.QuoteEndpoint = (*QuotePageEndpoint)(nil)

// NewQuotePageEndpoint はQuotePageEndpointを生成します。
func NewQuotePageEndpoint(cfg Config, client *http.Client) *QuotePageEndpoint {
	return &QuotePageEndpoint{cfg: cfg, client: client}
}

// Name returns "quote-page".
func (e *QuotePageEndpoint) Name() string {
	return "quote-page"
}

// FetchQuote はページに埋め込まれたJSON断片またはfin-streamer要素から相場を読み取ります。
func (e *QuotePageEndpoint) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	u := fmt.Sprintf("%s/quote/%s/", e.cfg.PageURL, url.PathEscape(e.cfg.upstreamSymbol(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, usecase.ErrEndpointUnreachable.Wrap(err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	res, err := e.client.Do(req)
	if err != nil {
		return nil, usecase.ErrEndpointUnreachable.Wrap(err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	if res.StatusCode >= 400 {
		return nil, usecase.ErrEndpointUnreachable.Withf("quote-page http %d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, usecase.ErrEndpointUnreachable.Wrap(err)
	}
	return parseQuotePage(symbol, e.cfg.upstreamSymbol(symbol), string(b))
}

// quotePage は1ページ分の抽出元です。埋め込みJSONを優先し、無ければfin-streamer要素を読みます。
type quotePage struct {
	raw      string
	doc      *goquery.Document
	upstream string
}

func newQuotePage(upstream, page string) *quotePage {
	p := &quotePage{raw: page, upstream: upstream}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		slog.Debug("quote-page html parse failed", "symbol", upstream, "error", err)
	} else {
		p.doc = doc
	}
	return p
}

func parseQuotePage(symbol, upstream, page string) (*entity.Quote, error) {
	p := newQuotePage(upstream, page)

	price, ok := p.number("regularMarketPrice")
	if !ok || price <= 0 {
		return nil, usecase.ErrEndpointParse.Withf("quote-page: price not found for %s", symbol)
	}
	prev, _ := p.number("regularMarketPreviousClose")
	high, _ := p.number("regularMarketDayHigh")
	low, _ := p.number("regularMarketDayLow")
	vol, _ := p.number("regularMarketVolume")

	return &entity.Quote{
		Symbol:        symbol,
		CurrentPrice:  price,
		PreviousClose: prev,
		DayHigh:       high,
		DayLow:        low,
		Volume:        int64(vol),
		Currency:      p.text("currency"),
		Exchange:      p.text("exchange"),
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// rawFieldPatterns matches the embedded-JSON form, e.g.
// "regularMarketPrice":{"raw":2450.5,"fmt":"2,450.50"}
var rawFieldPatterns = compileRawFieldPatterns(
	"regularMarketPrice", "regularMarketPreviousClose",
	"regularMarketDayHigh", "regularMarketDayLow", "regularMarketVolume",
)

func compileRawFieldPatterns(fields ...string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(fields))
	for _, f := range fields {
		out[f] = regexp.MustCompile(`"` + regexp.QuoteMeta(f) + `"\s*:\s*\{\s*"raw"\s*:\s*(-?[0-9.]+)`)
	}
	return out
}

func (p *quotePage) number(field string) (float64, bool) {
	if re, ok := rawFieldPatterns[field]; ok {
		if m := re.FindStringSubmatch(p.raw); len(m) == 2 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return p.streamerValue(field)
}

// streamerValue reads <fin-streamer data-field=field value=...>.
// 関連銘柄の要素も並ぶため、data-symbolが一致する要素を優先します。
func (p *quotePage) streamerValue(field string) (float64, bool) {
	if p.doc == nil {
		return 0, false
	}
	sel := p.doc.Find(`fin-streamer[data-field="` + field + `"]`)
	if own := sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("data-symbol", ""), p.upstream)
	}); own.Length() > 0 {
		sel = own
	}

	var (
		out   float64
		found bool
	)
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("value")
		if !ok {
			return true
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return true
		}
		out, found = f, true
		return false
	})
	return out, found
}

var stringFieldRe = regexp.MustCompile(`"(currency|exchange)"\s*:\s*"([A-Za-z]{2,10})"`)

func (p *quotePage) text(field string) string {
	for _, m := range stringFieldRe.FindAllStringSubmatch(p.raw, -1) {
		if m[1] == field {
			return m[2]
		}
	}
	return ""
}
