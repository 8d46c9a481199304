package usecase

import "papertrade/internal/feature/search/domain/entity"

// manualSymbols はオンライン検索がすべて空だった場合に使う主要銘柄の対応表です。
// 起動時にローカルインデックスが空であればこの表で初期化します。
var manualSymbols = []entity.SearchResult{
	{Symbol: "RELIANCE", Name: "Reliance Industries Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "TCS", Name: "Tata Consultancy Services Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "HDFCBANK", Name: "HDFC Bank Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "INFY", Name: "Infosys Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "ICICIBANK", Name: "ICICI Bank Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "HINDUNILVR", Name: "Hindustan Unilever Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "SBIN", Name: "State Bank of India", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "BHARTIARTL", Name: "Bharti Airtel Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "ITC", Name: "ITC Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "LT", Name: "Larsen & Toubro Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "AXISBANK", Name: "Axis Bank Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "ASIANPAINT", Name: "Asian Paints Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "MARUTI", Name: "Maruti Suzuki India Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "WIPRO", Name: "Wipro Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "HCLTECH", Name: "HCL Technologies Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "SUNPHARMA", Name: "Sun Pharmaceutical Industries Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "TATAMOTORS", Name: "Tata Motors Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "TATASTEEL", Name: "Tata Steel Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "BAJFINANCE", Name: "Bajaj Finance Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "ADANIENT", Name: "Adani Enterprises Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "ONGC", Name: "Oil and Natural Gas Corporation Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "NTPC", Name: "NTPC Limited", Exchange: "NSE", Type: "EQUITY"},
	{Symbol: "^NSEI", Name: "NIFTY 50", Exchange: "NSE", Type: "INDEX"},
	{Symbol: "^BSESN", Name: "S&P BSE SENSEX", Exchange: "BSE", Type: "INDEX"},
}
