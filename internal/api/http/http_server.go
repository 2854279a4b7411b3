package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"otcledger/internal/api/dto"
	"otcledger/internal/core"
	"otcledger/internal/domain"
	"otcledger/internal/metrics"
	"otcledger/internal/middleware"
)

// HTTPServer is the host surface of the ledger. It supplies caller
// identity from the X-Client-ID header and maps the engine's failure
// taxonomy onto status codes.
type HTTPServer struct {
	Eng       *core.Engine
	rateLimit time.Duration
}

func NewHTTPServer(eng *core.Engine, rateLimit time.Duration) *HTTPServer {
	return &HTTPServer{Eng: eng, rateLimit: rateLimit}
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/", middleware.RequireIdentity())
	if s.rateLimit > 0 {
		rl := middleware.NewRateLimiter(s.rateLimit)
		api.Use(rl.Middleware())
	}

	api.POST("/orders", s.createOrder)
	api.GET("/orders/:id", s.getOrder)
	api.GET("/orders", s.listOrders)
	api.POST("/mint", s.mint)
	api.POST("/liquidity", s.createLiquidity)
	api.GET("/liquidity", s.getLiquidity)
	api.GET("/liquidity/my", s.myLiquidity)
	api.GET("/balance", s.balance)
	api.GET("/tokens", s.tokens)
	api.GET("/oracle", s.getRate)
	api.GET("/matches", s.listMatches)
	api.POST("/admin/match", s.matchOrder)
	api.POST("/admin/oracle", s.setRate)

	return r
}

func (s *HTTPServer) createOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Order creation deliberately accepts any asset string and any
	// amount; the settlement path re-validates both.
	id, err := s.Eng.CreateOrder(c.Request.Context(), middleware.Caller(c), domain.Asset(req.Asset), req.Amount, req.SettlerHint)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreateOrderResponse{OrderID: id})
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	o, err := s.Eng.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: convertOrder(o)})
}

func (s *HTTPServer) listOrders(c *gin.Context) {
	creator := c.Query("creator")
	if creator == "" {
		creator = string(middleware.Caller(c))
	}
	orders := s.Eng.OrdersByCreator(c.Request.Context(), domain.Identity(creator))
	out := make([]dto.Order, len(orders))
	for i, o := range orders {
		out[i] = convertOrder(o)
	}
	c.JSON(http.StatusOK, dto.ListOrdersResponse{Orders: out})
}

func (s *HTTPServer) mint(c *gin.Context) {
	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset, err := domain.ParseAsset(req.Asset)
	if err != nil {
		s.fail(c, err)
		return
	}
	bal, err := s.Eng.Mint(c.Request.Context(), middleware.Caller(c), asset, req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MintResponse{Asset: string(asset), NewBalance: bal})
}

func (s *HTTPServer) createLiquidity(c *gin.Context) {
	var req dto.CreateLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset, err := domain.ParseAsset(req.Asset)
	if err != nil {
		s.fail(c, err)
		return
	}
	id, err := s.Eng.CreateLiquidity(c.Request.Context(), middleware.Caller(c), asset, req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreateLiquidityResponse{PositionID: id})
}

func (s *HTTPServer) getLiquidity(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider required"})
		return
	}
	s.respondPosition(c, domain.Identity(provider), c.Query("asset"))
}

func (s *HTTPServer) myLiquidity(c *gin.Context) {
	s.respondPosition(c, middleware.Caller(c), c.Query("asset"))
}

func (s *HTTPServer) respondPosition(c *gin.Context, provider domain.Identity, rawAsset string) {
	asset, err := domain.ParseAsset(rawAsset)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.Eng.GetLiquidity(c.Request.Context(), provider, asset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetPositionResponse{Position: dto.Position{
		ID:       p.ID,
		Asset:    string(p.Asset),
		Provider: string(p.Provider),
		Amount:   p.Amount,
	}})
}

func (s *HTTPServer) balance(c *gin.Context) {
	asset, err := domain.ParseAsset(c.Query("asset"))
	if err != nil {
		s.fail(c, err)
		return
	}
	amount := s.Eng.Balance(c.Request.Context(), middleware.Caller(c), asset)
	c.JSON(http.StatusOK, dto.BalanceResponse{Asset: string(asset), Amount: amount})
}

func (s *HTTPServer) tokens(c *gin.Context) {
	a, b := s.Eng.TokenAssets()
	c.JSON(http.StatusOK, dto.TokensResponse{AssetA: string(a), AssetB: string(b)})
}

func (s *HTTPServer) matchOrder(c *gin.Context) {
	var req dto.MatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := s.Eng.MatchOrder(c.Request.Context(), middleware.Caller(c), req.OrderID, domain.Identity(req.Provider))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MatchOrderResponse{Match: convertMatch(m)})
}

func (s *HTTPServer) setRate(c *gin.Context) {
	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.SetRate(c.Request.Context(), middleware.Caller(c), dir, req.Rate); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RateResponse{Direction: string(dir), Rate: req.Rate})
}

func (s *HTTPServer) getRate(c *gin.Context) {
	dir, err := domain.ParseDirection(c.Query("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rate := s.Eng.Rate(c.Request.Context(), dir)
	c.JSON(http.StatusOK, dto.RateResponse{Direction: string(dir), Rate: rate})
}

func (s *HTTPServer) listMatches(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = v
	}
	matches := s.Eng.RecentMatches(c.Request.Context(), limit)
	out := make([]dto.Match, len(matches))
	for i, m := range matches {
		out[i] = convertMatch(m)
	}
	c.JSON(http.StatusOK, dto.ListMatchesResponse{Matches: out})
}

// fail translates the failure taxonomy to an HTTP status.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrPositionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrUnknownAsset):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderClosed),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientLiquidity),
		errors.Is(err, domain.ErrOracleUnset):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func convertOrder(o domain.Order) dto.Order {
	return dto.Order{
		ID:          o.ID,
		Asset:       string(o.Asset),
		Creator:     string(o.Creator),
		Amount:      o.Amount,
		SettlerHint: o.SettlerHint,
		Open:        o.Open,
		CreatedAt:   o.CreatedAt,
	}
}

func convertMatch(m domain.Match) dto.Match {
	return dto.Match{
		OrderID:   m.OrderID,
		Provider:  string(m.Provider),
		Seller:    string(m.Seller),
		AssetIn:   string(m.AssetIn),
		AssetOut:  string(m.AssetOut),
		AmountIn:  m.AmountIn,
		AmountOut: m.AmountOut,
		Rate:      m.Rate,
		Timestamp: m.Timestamp,
	}
}
