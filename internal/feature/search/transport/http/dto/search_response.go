// Package dto defines data transfer objects for the search HTTP API.
package dto

import quotedto "papertrade/internal/feature/quotes/transport/http/dto"

// SearchItem は検索結果の1件です。
type SearchItem struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// SearchResponse は検索結果のレスポンスDTOです。
type SearchResponse struct {
	Query   string       `json:"query"`
	Source  string       `json:"source,omitempty"`
	Count   int          `json:"count"`
	Results []SearchItem `json:"results"`
}

// SearchQuoteResponse は検索と相場取得をまとめたレスポンスDTOです。
type SearchQuoteResponse struct {
	Found SearchItem             `json:"found"`
	Quote quotedto.QuoteResponse `json:"quote"`
}

// SymbolItem represents a symbol in the index listing.
type SymbolItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}
