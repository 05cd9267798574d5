package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// binanceGateway talks to a Binance-style spot REST API. Private
// endpoints are authenticated with an HMAC-SHA256 signature over the
// query string plus a millisecond timestamp, and the account API key
// in the X-MBX-APIKEY header.
type binanceGateway struct {
	http  *resty.Client
	creds CredentialSource
}

func newBinance(cfg Config, creds CredentialSource) *binanceGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout)

	return &binanceGateway{
		http:  client,
		creds: creds,
	}
}

func (g *binanceGateway) Name() string {
	return Binance
}

// apiError is Binance's error payload on non-2xx responses.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
		Filters    []struct {
			FilterType  string `json:"filterType"`
			MinQty      string `json:"minQty"`
			StepSize    string `json:"stepSize"`
			TickSize    string `json:"tickSize"`
			MinNotional string `json:"minNotional"`
		} `json:"filters"`
	} `json:"symbols"`
}

type accountInfo struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

type orderAck struct {
	OrderID             int64  `json:"orderId"`
	Symbol              string `json:"symbol"`
	Status              string `json:"status"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	TransactTime        int64  `json:"transactTime"`
}

func (g *binanceGateway) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	var out tickerPrice
	params := url.Values{}
	params.Set("symbol", symbol)

	if err := g.publicGet(ctx, "ticker price", "/v3/ticker/price", params, &out); err != nil {
		return 0, err
	}
	if out.Price == "" {
		return 0, &Error{Exchange: Binance, Op: "ticker price", Message: "empty price for " + symbol, Err: ErrSymbolNotFound}
	}
	return parseFloat("ticker price", "price", out.Price)
}

func (g *binanceGateway) TickerPrices(ctx context.Context) (map[string]float64, error) {
	var out []tickerPrice
	if err := g.publicGet(ctx, "ticker prices", "/v3/ticker/price", nil, &out); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(out))
	for _, t := range out {
		price, err := parseFloat("ticker prices", "price", t.Price)
		if err != nil {
			return nil, err
		}
		prices[t.Symbol] = price
	}
	return prices, nil
}

func (g *binanceGateway) MarketConstraints(ctx context.Context, symbol string) (MarketConstraints, error) {
	var out exchangeInfo
	params := url.Values{}
	params.Set("symbol", symbol)

	if err := g.publicGet(ctx, "exchange info", "/v3/exchangeInfo", params, &out); err != nil {
		return MarketConstraints{}, err
	}
	if len(out.Symbols) == 0 {
		return MarketConstraints{}, &Error{Exchange: Binance, Op: "exchange info", Message: "symbol " + symbol + " not found", Err: ErrSymbolNotFound}
	}

	info := out.Symbols[0]
	constraints := MarketConstraints{
		Symbol:     info.Symbol,
		BaseAsset:  info.BaseAsset,
		QuoteAsset: info.QuoteAsset,
	}

	for _, f := range info.Filters {
		var err error
		switch f.FilterType {
		case "LOT_SIZE":
			if constraints.MinQty, err = parseFloat("exchange info", "minQty", f.MinQty); err != nil {
				return MarketConstraints{}, err
			}
			if constraints.StepSize, err = parseFloat("exchange info", "stepSize", f.StepSize); err != nil {
				return MarketConstraints{}, err
			}
		case "PRICE_FILTER":
			if constraints.TickSize, err = parseFloat("exchange info", "tickSize", f.TickSize); err != nil {
				return MarketConstraints{}, err
			}
		case "MIN_NOTIONAL":
			if constraints.MinNotional, err = parseFloat("exchange info", "minNotional", f.MinNotional); err != nil {
				return MarketConstraints{}, err
			}
		}
	}

	return constraints, nil
}

func (g *binanceGateway) Balance(ctx context.Context, userID, asset string) (Balance, error) {
	var out accountInfo
	if err := g.signedRequest(ctx, "account", "GET", "/v3/account", url.Values{}, userID, &out); err != nil {
		return Balance{}, err
	}

	asset = strings.ToUpper(asset)
	for _, b := range out.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := parseFloat("account", "free", b.Free)
		if err != nil {
			return Balance{}, err
		}
		locked, err := parseFloat("account", "locked", b.Locked)
		if err != nil {
			return Balance{}, err
		}
		return Balance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
			Total:  free + locked,
		}, nil
	}

	return Balance{}, &Error{Exchange: Binance, Op: "account", Message: "balance for " + asset + " not found"}
}

func (g *binanceGateway) PlaceOrder(ctx context.Context, userID string, order Order) (OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", order.Symbol)
	params.Set("side", string(order.Side))
	params.Set("type", string(order.Type))
	params.Set("quantity", strconv.FormatFloat(order.Quantity, 'f', -1, 64))

	if order.Price > 0 {
		params.Set("price", strconv.FormatFloat(order.Price, 'f', -1, 64))
	}
	if order.TimeInForce != "" {
		params.Set("timeInForce", order.TimeInForce)
	} else if order.Type == TypeLimit {
		params.Set("timeInForce", "GTC")
	}

	var out orderAck
	if err := g.signedRequest(ctx, "order", "POST", "/v3/order", params, userID, &out); err != nil {
		return OrderResult{}, err
	}

	price, err := parseFloat("order", "price", out.Price)
	if err != nil {
		return OrderResult{}, err
	}
	origQty, err := parseFloat("order", "origQty", out.OrigQty)
	if err != nil {
		return OrderResult{}, err
	}
	executedQty, err := parseFloat("order", "executedQty", out.ExecutedQty)
	if err != nil {
		return OrderResult{}, err
	}
	quoteQty, err := parseFloat("order", "cummulativeQuoteQty", out.CummulativeQuoteQty)
	if err != nil {
		return OrderResult{}, err
	}

	return OrderResult{
		OrderID:            strconv.FormatInt(out.OrderID, 10),
		Symbol:             out.Symbol,
		Status:             out.Status,
		Price:              price,
		OrigQty:            origQty,
		ExecutedQty:        executedQty,
		CumulativeQuoteQty: quoteQty,
		TransactTime:       time.UnixMilli(out.TransactTime),
	}, nil
}

// publicGet performs an unsigned request against a public endpoint.
func (g *binanceGateway) publicGet(ctx context.Context, op, endpoint string, params url.Values, out interface{}) error {
	req := g.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiError{})
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(endpoint)
	return g.checkResponse(op, resp, err)
}

// signedRequest resolves the user's credentials, signs the canonical
// query string and performs the request. The timestamp parameter
// bounds replay exposure; the exchange rejects stale timestamps.
func (g *binanceGateway) signedRequest(ctx context.Context, op, method, endpoint string, params url.Values, userID string, out interface{}) error {
	creds, err := g.creds.ActiveCredentials(userID, Binance)
	if err != nil {
		return err
	}

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()
	query += "&signature=" + sign(query, creds.SecretKey)

	req := g.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", creds.APIKey).
		SetResult(out).
		SetError(&apiError{})

	// The query string must go over the wire exactly as signed, with
	// the signature as the final parameter.
	target := endpoint + "?" + query

	var resp *resty.Response
	switch method {
	case "POST":
		resp, err = req.Post(target)
	case "DELETE":
		resp, err = req.Delete(target)
	default:
		resp, err = req.Get(target)
	}

	return g.checkResponse(op, resp, err)
}

func (g *binanceGateway) checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &Error{Exchange: Binance, Op: op, Err: err}
	}
	if resp.IsError() {
		msg := resp.String()
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Msg != "" {
			msg = apiErr.Msg
		}
		return &Error{Exchange: Binance, Op: op, StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}

// sign computes the hex HMAC-SHA256 of the query string with the
// account secret key.
func sign(query, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseFloat parses a numeric field from an exchange payload. An
// empty string is a legitimately absent field and parses to zero; a
// non-empty malformed value is a protocol error and never degrades
// silently.
func parseFloat(op, field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &Error{Exchange: Binance, Op: op, Message: "malformed " + field + " " + strconv.Quote(s), Err: err}
	}
	return f, nil
}
