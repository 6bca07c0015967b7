package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_dashboard/internal/feature/coins/domain"
	"crypto_dashboard/internal/feature/coins/domain/entity"
	"crypto_dashboard/internal/feature/coins/transport/http/dto"
	"crypto_dashboard/internal/feature/coins/usecase"
	"crypto_dashboard/internal/platform/cache"
)

// mockCoinsUsecase はCoinsUsecaseインターフェースのモック実装です。
type mockCoinsUsecase struct {
	ListCoinsFunc      func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error)
	GetCoinDetailFunc  func(ctx context.Context, id string) (*entity.CoinDetail, error)
	GetMarketChartFunc func(ctx context.Context, id string, days int) ([]entity.ChartPoint, error)
}

func (m *mockCoinsUsecase) ListCoins(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
	if m.ListCoinsFunc != nil {
		return m.ListCoinsFunc(ctx, page, perPage, sort)
	}
	return nil, nil
}

func (m *mockCoinsUsecase) GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error) {
	if m.GetCoinDetailFunc != nil {
		return m.GetCoinDetailFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCoinsUsecase) GetMarketChart(ctx context.Context, id string, days int) ([]entity.ChartPoint, error) {
	if m.GetMarketChartFunc != nil {
		return m.GetMarketChartFunc(ctx, id, days)
	}
	return nil, nil
}

func newTestRouter(uc CoinsUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCoinsHandler(uc)
	r := gin.New()
	r.GET("/coins", h.List)
	r.GET("/coins/:id", h.Detail)
	r.GET("/coins/:id/chart", h.Chart)
	return r
}

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// TestNewCoinsHandler はコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewCoinsHandler(t *testing.T) {
	t.Parallel()

	handler := NewCoinsHandler(&mockCoinsUsecase{})

	assert.NotNil(t, handler, "handler should not be nil")
	assert.NotNil(t, handler.uc, "usecase should not be nil")
}

// TestCoinsHandler_List はクエリパラメータの解釈とレスポンス変換を検証します。
func TestCoinsHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		url             string
		expectedPage    int
		expectedPerPage int
		expectedSort    usecase.SortSpec
	}{
		{
			name:            "defaults",
			url:             "/coins",
			expectedPage:    1,
			expectedPerPage: 50,
			expectedSort:    usecase.SortSpec{Key: usecase.SortMarketCap, Order: usecase.OrderDesc},
		},
		{
			name:            "explicit paging and sort",
			url:             "/coins?page=3&per_page=100&sort=price&order=asc",
			expectedPage:    3,
			expectedPerPage: 100,
			expectedSort:    usecase.SortSpec{Key: usecase.SortPrice, Order: usecase.OrderAsc},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockUC := &mockCoinsUsecase{
				ListCoinsFunc: func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
					assert.Equal(t, tt.expectedPage, page)
					assert.Equal(t, tt.expectedPerPage, perPage)
					assert.Equal(t, tt.expectedSort, sort)
					return []entity.Coin{
						{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: decPtr(43250.55), MarketCapRank: 1},
					}, nil
				},
			}
			router := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var body []dto.CoinItem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Len(t, body, 1)
			assert.Equal(t, "bitcoin", body[0].ID)
			require.NotNil(t, body[0].CurrentPrice)
			assert.InDelta(t, 43250.55, *body[0].CurrentPrice, 0.001)
			require.NotNil(t, body[0].MarketCapRank)
			assert.Equal(t, 1, *body[0].MarketCapRank)
		})
	}
}

// TestCoinsHandler_List_AppliesFilters は検索語とレンジフィルタが取得済み
// ページに適用されることを検証します。
func TestCoinsHandler_List_AppliesFilters(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockUC := &mockCoinsUsecase{
		ListCoinsFunc: func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
			return []entity.Coin{
				{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: decPtr(43250)},
				{ID: "bittensor", Symbol: "tao", Name: "Bittensor", CurrentPrice: decPtr(350)},
				{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: decPtr(3750)},
			}, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins?q=bit&min_price=1000", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body []dto.CoinItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// "bit"に一致するのはbitcoinとbittensor、min_price=1000で残るのはbitcoinのみ
	require.Len(t, body, 1)
	assert.Equal(t, "bitcoin", body[0].ID)
}

// TestCoinsHandler_List_EmptyResult はフィルタ後に空でも200と空配列を返すことを検証します。
func TestCoinsHandler_List_EmptyResult(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockUC := &mockCoinsUsecase{
		ListCoinsFunc: func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
			return []entity.Coin{{ID: "bitcoin", Name: "Bitcoin"}}, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins?q=nomatch", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// TestCoinsHandler_ErrorMapping は上流エラーの分類がHTTPステータスと
// メッセージに写像されることを検証します。
func TestCoinsHandler_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "rate limited maps to 429 with actionable message",
			err:            domain.ErrRateLimited,
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"error":"API rate limit exceeded. Please try again later."}`,
		},
		{
			name:           "not found maps to 404",
			err:            domain.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"asset not found"}`,
		},
		{
			name:           "upstream status maps to 502",
			err:            &domain.StatusError{Status: http.StatusInternalServerError},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"provider http 500"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockUC := &mockCoinsUsecase{
				ListCoinsFunc: func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/coins", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestCoinsHandler_RefreshMarksContext はrefresh=trueのリクエストで
// キャッシュバイパスの印が付いたコンテキストが渡ることを検証します。
func TestCoinsHandler_RefreshMarksContext(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		url             string
		expectedRefresh bool
	}{
		{"refresh requested", "/coins?refresh=true", true},
		{"no refresh", "/coins", false},
		{"refresh must be exactly true", "/coins?refresh=1", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockUC := &mockCoinsUsecase{
				ListCoinsFunc: func(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
					assert.Equal(t, tt.expectedRefresh, cache.RefreshRequested(ctx))
					return nil, nil
				},
			}
			router := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

// TestCoinsHandler_Detail は詳細レスポンスの変換を検証します。
func TestCoinsHandler_Detail(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockUC := &mockCoinsUsecase{
		GetCoinDetailFunc: func(ctx context.Context, id string) (*entity.CoinDetail, error) {
			assert.Equal(t, "bitcoin", id)
			return &entity.CoinDetail{
				Coin:        entity.Coin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: decPtr(43250.55)},
				Description: "Bitcoin is the first cryptocurrency.",
				Homepage:    []string{"https://bitcoin.org"},
			}, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins/bitcoin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body dto.CoinDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bitcoin", body.ID)
	assert.Equal(t, "Bitcoin is the first cryptocurrency.", body.Description)
	assert.Equal(t, []string{"https://bitcoin.org"}, body.Homepage)
}

// TestCoinsHandler_Detail_NotFound は未知のidで404が返ることを検証します。
func TestCoinsHandler_Detail_NotFound(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockUC := &mockCoinsUsecase{
		GetCoinDetailFunc: func(ctx context.Context, id string) (*entity.CoinDetail, error) {
			return nil, domain.ErrNotFound
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins/no-such-coin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"asset not found"}`, w.Body.String())
}

// TestCoinsHandler_Chart はチャートレスポンスの変換とdaysの既定値を検証します。
func TestCoinsHandler_Chart(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mockUC := &mockCoinsUsecase{
		GetMarketChartFunc: func(ctx context.Context, id string, days int) ([]entity.ChartPoint, error) {
			assert.Equal(t, "ethereum", id)
			assert.Equal(t, 30, days)
			return []entity.ChartPoint{
				{Time: base, Price: decimal.NewFromFloat(3750.25)},
				{Time: base.Add(24 * time.Hour), Price: decimal.NewFromFloat(3801.10)},
			}, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins/ethereum/chart?days=30", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body []dto.ChartPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, base.UnixMilli(), body[0].Time)
	assert.InDelta(t, 3750.25, body[0].Price, 0.001)
}

// TestCoinsHandler_Chart_DefaultDays はdays未指定で7が使われることを検証します。
func TestCoinsHandler_Chart_DefaultDays(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockUC := &mockCoinsUsecase{
		GetMarketChartFunc: func(ctx context.Context, id string, days int) ([]entity.ChartPoint, error) {
			assert.Equal(t, 7, days)
			return nil, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/coins/bitcoin/chart", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
