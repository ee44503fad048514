package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"DexSentinel/internal/model"
)

const defaultBaseURL = "https://api.dexscreener.com"

// DexScreenerOptions configures the DexScreener client.
type DexScreenerOptions struct {
	BaseURL  string
	Chain    string
	Interval string // candle interval, e.g. "1m"
	ProxyURL string
	Timeout  time.Duration
}

// DexScreener implements CandidateSource and SeriesSource using the
// DexScreener public REST API.
type DexScreener struct {
	Client   *http.Client
	BaseURL  string
	Chain    string
	Interval string
}

// NewDexScreener creates a DexScreener client.
func NewDexScreener(opts DexScreenerOptions) *DexScreener {
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Chain == "" {
		opts.Chain = "solana"
	}
	if opts.Interval == "" {
		opts.Interval = "1m"
	}
	return &DexScreener{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		BaseURL:  strings.TrimRight(opts.BaseURL, "/"),
		Chain:    opts.Chain,
		Interval: opts.Interval,
	}
}

func (d *DexScreener) Name() string { return "dexscreener" }

// flexFloat decodes a JSON number, a numeric string or null.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*f = flexFloat{}
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = flexFloat{}
		return nil
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		// unparseable values are treated as absent
		*f = flexFloat{}
		return nil
	}
	v, _ := dec.Float64()
	*f = flexFloat{v: v, ok: true}
	return nil
}

func (f flexFloat) optional() model.Optional[float64] {
	if !f.ok {
		return model.None[float64]()
	}
	return model.Some(f.v)
}

type dexToken struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type dexPair struct {
	PairAddress   string    `json:"pairAddress"`
	Address       string    `json:"address"`
	BaseToken     dexToken  `json:"baseToken"`
	PriceUSD      flexFloat `json:"priceUsd"`
	FDV           flexFloat `json:"fdv"`
	MarketCap     flexFloat `json:"marketCap"`
	PairCreatedAt flexFloat `json:"pairCreatedAt"`
	Liquidity     struct {
		USD  flexFloat `json:"usd"`
		Base flexFloat `json:"base"`
	} `json:"liquidity"`
}

type dexPairsResponse struct {
	Pairs []dexPair `json:"pairs"`
}

type dexCandle struct {
	T flexFloat `json:"t"`
	O flexFloat `json:"o"`
	H flexFloat `json:"h"`
	L flexFloat `json:"l"`
	C flexFloat `json:"c"`
	V flexFloat `json:"v"`
}

type dexCandlesResponse struct {
	Candles []dexCandle `json:"candles"`
}

func (p dexPair) toModel() model.Pair {
	addr := p.PairAddress
	if addr == "" {
		addr = p.Address
	}
	sym := p.BaseToken.Symbol
	if sym == "" {
		sym = p.BaseToken.Name
	}
	if sym == "" {
		sym = "?"
	}

	liq := p.Liquidity.USD
	if !liq.ok || liq.v == 0 {
		liq = p.Liquidity.Base
	}
	mcap := p.FDV
	if !mcap.ok || mcap.v == 0 {
		mcap = p.MarketCap
	}

	var created time.Time
	if p.PairCreatedAt.ok {
		created = unixTime(p.PairCreatedAt.v)
	}
	return model.Pair{
		Address:   addr,
		Symbol:    sym,
		CreatedAt: created,
		Snapshot: model.Snapshot{
			Liquidity: liq.optional(),
			PriceUSD:  p.PriceUSD.optional(),
			MarketCap: mcap.optional(),
		},
	}
}

// unixTime accepts epoch seconds or milliseconds.
func unixTime(ts float64) time.Time {
	if ts > 1e12 {
		return time.UnixMilli(int64(ts)).UTC()
	}
	return time.Unix(int64(ts), 0).UTC()
}

func (d *DexScreener) get(ctx context.Context, u string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Pairs returns the chain's latest pairs, newest first.
func (d *DexScreener) Pairs(ctx context.Context) ([]model.Pair, error) {
	u := fmt.Sprintf("%s/latest/dex/pairs/%s", d.BaseURL, url.PathEscape(d.Chain))
	status, body, err := d.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("dexscreener pairs: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("dexscreener pairs: status %d, body: %s", status, truncate(body, 256))
	}

	var resp dexPairsResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener pairs decode: %w", err)
	}

	pairs := make([]model.Pair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		pairs = append(pairs, p.toModel())
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].CreatedAt.After(pairs[j].CreatedAt) })
	return pairs, nil
}

// Candles returns up to limit of the most recent candles for the pair in
// ascending time order. A non-200 response yields an empty series.
func (d *DexScreener) Candles(ctx context.Context, address string, limit int) ([]model.Candle, error) {
	u := fmt.Sprintf("%s/latest/dex/candles/%s/%s?pairAddress=%s",
		d.BaseURL, url.PathEscape(d.Chain), url.PathEscape(d.Interval), url.QueryEscape(address))
	status, body, err := d.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("dexscreener candles %s: %w", address, err)
	}
	if status != http.StatusOK {
		return nil, nil
	}

	var resp dexCandlesResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener candles decode: %w", err)
	}

	bars := make([]model.Candle, 0, len(resp.Candles))
	for _, c := range resp.Candles {
		if !c.T.ok || !c.C.ok {
			continue
		}
		bars = append(bars, model.Candle{
			Time:   unixTime(c.T.v),
			Open:   orClose(c.O, c.C.v),
			High:   orClose(c.H, c.C.v),
			Low:    orClose(c.L, c.C.v),
			Close:  c.C.v,
			Volume: c.V.v,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	bars = dropNonIncreasing(bars)

	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func orClose(f flexFloat, c float64) float64 {
	if f.ok {
		return f.v
	}
	return c
}

// dropNonIncreasing keeps only bars with strictly increasing timestamps.
func dropNonIncreasing(bars []model.Candle) []model.Candle {
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && !b.Time.After(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
