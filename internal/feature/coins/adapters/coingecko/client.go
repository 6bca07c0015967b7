package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"crypto_dashboard/internal/feature/coins/adapters/coingecko/dto"
	"crypto_dashboard/internal/feature/coins/domain"
	"crypto_dashboard/internal/feature/coins/domain/entity"
	"crypto_dashboard/internal/feature/coins/usecase"
	"crypto_dashboard/internal/shared/ratelimiter"
)

// CoinGeckoMarket はCoinGecko外部APIから暗号資産の市場データを取得するMarketRepository実装です。
type CoinGeckoMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface // nilの場合はスロットリングなし
}

// CoinGeckoMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*CoinGeckoMarket)(nil)

// NewCoinGeckoMarket は指定された設定とHTTPクライアントでCoinGeckoMarketの新しいインスタンスを生成します。
// limiterは無料ティアのレート上限を尊重するためのクライアント側スロットルで、nil可です。
func NewCoinGeckoMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *CoinGeckoMarket {
	return &CoinGeckoMarket{cfg: cfg, client: client, limiter: limiter}
}

// orderTokens translates the local sort vocabulary into the provider's
// documented order tokens. The two vocabularies look alike but are not the
// same enumeration: the 24h-change key expands to the percentage token, and
// price has its own token pair.
var orderTokens = map[usecase.SortSpec]string{
	{Key: usecase.SortMarketCap, Order: usecase.OrderAsc}:  "market_cap_asc",
	{Key: usecase.SortMarketCap, Order: usecase.OrderDesc}: "market_cap_desc",
	{Key: usecase.SortPrice, Order: usecase.OrderAsc}:      "price_asc",
	{Key: usecase.SortPrice, Order: usecase.OrderDesc}:     "price_desc",
	{Key: usecase.SortVolume, Order: usecase.OrderAsc}:     "volume_asc",
	{Key: usecase.SortVolume, Order: usecase.OrderDesc}:    "volume_desc",
	{Key: usecase.SortChange24h, Order: usecase.OrderAsc}:  "price_change_percentage_24h_asc",
	{Key: usecase.SortChange24h, Order: usecase.OrderDesc}: "price_change_percentage_24h_desc",
}

// ListCoins はCoinGecko APIから市場一覧の1ページ分を取得し、entity.Coinのスライスとして返します。
func (g *CoinGeckoMarket) ListCoins(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
	order, ok := orderTokens[sort]
	if !ok {
		order = orderTokens[usecase.DefaultSort]
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("vs_currency", "usd")
	q.Set("order", order)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h")

	var body []dto.MarketCoin
	if err := g.get(ctx, "/coins/markets", q, &body); err != nil {
		return nil, err
	}

	coins := make([]entity.Coin, 0, len(body))
	for _, v := range body {
		coins = append(coins, toCoin(v))
	}
	return coins, nil
}

// GetCoinDetail はCoinGecko APIから1銘柄の詳細を取得します。
// 未知のidに対するプロバイダの404はdomain.ErrNotFoundとして返します。
func (g *CoinGeckoMarket) GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var body dto.CoinDetail
	if err := g.get(ctx, "/coins/"+url.PathEscape(id), q, &body); err != nil {
		return nil, err
	}
	return toCoinDetail(body), nil
}

// GetMarketChart はCoinGecko APIから価格チャート系列を取得します。
// daysとintervalの組み合わせの整合性は呼び出し側（usecase）が保証します。
func (g *CoinGeckoMarket) GetMarketChart(ctx context.Context, id string, days int, interval string) ([]entity.ChartPoint, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", interval)

	var body dto.MarketChart
	if err := g.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &body); err != nil {
		return nil, err
	}

	points := make([]entity.ChartPoint, 0, len(body.Prices))
	for _, p := range body.Prices {
		points = append(points, entity.ChartPoint{
			Time:  time.UnixMilli(p[0].IntPart()).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

// get はGETリクエストを発行し、レスポンスをoutにデコードします。
// ステータスコードをドメインエラー分類に変換するのはここ1箇所だけです。
func (g *CoinGeckoMarket) get(ctx context.Context, path string, q url.Values, out any) error {
	if g.limiter != nil {
		g.limiter.WaitIfNeeded()
	}

	u := fmt.Sprintf("%s%s?%s", g.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, g.cfg.APIKey)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case res.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case res.StatusCode >= 400:
		return &domain.StatusError{Status: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return nil
}

// toCoin はmarketsレスポンスのDTOをドメインエンティティに変換します。
func toCoin(v dto.MarketCoin) entity.Coin {
	// last_updatedは表示補助でしかないため、パース失敗はゼロ値のまま握りつぶす
	updated, _ := time.Parse(time.RFC3339Nano, v.LastUpdated)

	rank := 0
	if v.MarketCapRank != nil {
		rank = *v.MarketCapRank
	}

	return entity.Coin{
		ID:                v.ID,
		Symbol:            v.Symbol,
		Name:              v.Name,
		Image:             v.Image,
		CurrentPrice:      v.CurrentPrice,
		MarketCap:         v.MarketCap,
		MarketCapRank:     rank,
		PriceChange24h:    v.PriceChange24h,
		PriceChangePct24h: v.PriceChangePct24h,
		TotalVolume:       v.TotalVolume,
		High24h:           v.High24h,
		Low24h:            v.Low24h,
		CirculatingSupply: v.CirculatingSupply,
		TotalSupply:       v.TotalSupply,
		MaxSupply:         v.MaxSupply,
		LastUpdated:       updated,
	}
}

// toCoinDetail は詳細レスポンスのDTOをドメインエンティティに変換します。
// 数値はネストされたmarket_dataブロックのusdエントリから取り出します。
func toCoinDetail(v dto.CoinDetail) *entity.CoinDetail {
	updated, _ := time.Parse(time.RFC3339Nano, v.LastUpdated)

	rank := 0
	if v.MarketCapRank != nil {
		rank = *v.MarketCapRank
	}

	md := v.MarketData
	d := &entity.CoinDetail{
		Coin: entity.Coin{
			ID:                v.ID,
			Symbol:            v.Symbol,
			Name:              v.Name,
			Image:             v.Image.Large,
			CurrentPrice:      usd(md.CurrentPrice),
			MarketCap:         usd(md.MarketCap),
			MarketCapRank:     rank,
			PriceChange24h:    md.PriceChange24h,
			PriceChangePct24h: md.PriceChangePct24h,
			High24h:           usd(md.High24h),
			Low24h:            usd(md.Low24h),
			CirculatingSupply: md.CirculatingSupply,
			TotalSupply:       md.TotalSupply,
			MaxSupply:         md.MaxSupply,
			LastUpdated:       updated,
		},
		Description:    v.Description.En,
		Homepage:       nonEmpty(v.Links.Homepage),
		BlockchainSite: nonEmpty(v.Links.BlockchainSite),
	}
	if vol := usd(md.TotalVolume); vol != nil {
		d.TotalVolume = *vol
	}
	return d
}

// usd は通貨別マップからUSDエントリを取り出します。無ければnilです。
func usd(m map[string]decimal.Decimal) *decimal.Decimal {
	if v, ok := m["usd"]; ok {
		return &v
	}
	return nil
}

// nonEmpty は空文字の混じるリンク配列から空要素を取り除きます。
// プロバイダはhomepage等を固定長配列で返し、未設定スロットは""で埋めてきます。
func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
