package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/penglongli/gin-metrics/ginmetrics"
	"github.com/safwentrabelsi/spl-approval-revoker/chain"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/notify"
	"github.com/safwentrabelsi/spl-approval-revoker/revoke"
	"github.com/safwentrabelsi/spl-approval-revoker/session"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/safwentrabelsi/spl-approval-revoker/wallet"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "api")

// Session is the state the control API drives.
type Session interface {
	Snapshot() session.Snapshot
	ConnectWallet(ctx context.Context) error
	FetchDelegatedTokens(ctx context.Context) ([]types.Token, error)
	LoadMockTokens() ([]types.Token, error)
	Toggle(mint string) error
	SelectAll(checked bool)
	RevokeSelected(ctx context.Context) (revoke.Result, error)
	Receipts(ctx context.Context) ([]types.Receipt, error)
}

// Notifications exposes the toast feed.
type Notifications interface {
	Active(now time.Time) []notify.Notification
}

type ToggleRequest struct {
	Mint string `json:"mint" binding:"required"`
}

type SelectAllRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

type RevokeResponse struct {
	Signature string   `json:"signature"`
	Count     int      `json:"count"`
	Mints     []string `json:"mints"`
}

type APIServer struct {
	cfg     *config.ServerConfig
	session Session
	feed    Notifications
	limiter *RateLimiter
}

func NewAPIServer(cfg *config.ServerConfig, session Session, feed Notifications) *APIServer {
	s := &APIServer{
		cfg:     cfg,
		session: session,
		feed:    feed,
	}
	if cfg.GetRateLimit() > 0 {
		s.limiter = NewRateLimiter(cfg.GetRateLimit(), cfg.GetRateBurst())
	}
	return s
}

// Routes registers the control API on router.
func (s *APIServer) Routes(router gin.IRouter) {
	router.Use(RateLimit(s.limiter))
	router.GET("/wallet", s.handleGetWallet)
	router.POST("/wallet/connect", s.handleConnect)
	router.GET("/tokens", s.handleGetTokens)
	router.POST("/tokens/search", s.handleSearch)
	router.POST("/tokens/mock", s.handleMock)
	router.POST("/selection/toggle", s.handleToggle)
	router.POST("/selection/all", s.handleSelectAll)
	router.POST("/revoke", s.handleRevoke)
	router.GET("/notifications", s.handleGetNotifications)
	router.GET("/receipts", s.handleGetReceipts)
}

// Run serves the API and the metrics endpoint until ctx is cancelled. It
// returns once in-flight requests have drained.
func (s *APIServer) Run(ctx context.Context) error {
	router := gin.Default()
	metricRouter := gin.New()
	m := ginmetrics.GetMonitor()
	m.UseWithoutExposingEndpoint(router)
	m.SetMetricPath("/metrics")
	m.Expose(metricRouter)

	s.Routes(router)

	server := &http.Server{Addr: s.cfg.GetListenAddress(), Handler: router}
	metricServer := &http.Server{Addr: fmt.Sprintf("%s:%d", s.cfg.GetHost(), s.cfg.GetMetricsPort()), Handler: metricRouter}

	go func() {
		log.Infof("Metrics server started at url http://%s/metrics", metricServer.Addr)
		if err := metricServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server stopped: %v", err)
		}
	}()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("API server shutdown: %v", err)
		}
		if err := metricServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Metrics server shutdown: %v", err)
		}
	}()

	log.Infof("API server started at url http://%s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server stopped: %w", err)
	}
	// ListenAndServe returns as soon as Shutdown starts; in-flight requests
	// still use the session until the drain completes.
	<-drained
	return nil
}

func (s *APIServer) handleGetWallet(c *gin.Context) {
	snap := s.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"connected": snap.Connected, "publicKey": snap.PublicKey}})
}

// detached keeps the request values but outlives the client: a dropped
// connection must not abandon a connect, search or revocation half way.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (s *APIServer) handleConnect(c *gin.Context) {
	if err := s.session.ConnectWallet(detached(c)); err != nil {
		respondError(c, err)
		return
	}
	s.handleGetWallet(c)
}

func (s *APIServer) handleGetTokens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.session.Snapshot()})
}

func (s *APIServer) handleSearch(c *gin.Context) {
	if _, err := s.session.FetchDelegatedTokens(detached(c)); err != nil {
		respondError(c, err)
		return
	}
	s.handleGetTokens(c)
}

func (s *APIServer) handleMock(c *gin.Context) {
	if _, err := s.session.LoadMockTokens(); err != nil {
		respondError(c, err)
		return
	}
	s.handleGetTokens(c)
}

func (s *APIServer) handleToggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := s.session.Toggle(req.Mint); err != nil {
		respondError(c, err)
		return
	}
	s.handleGetTokens(c)
}

func (s *APIServer) handleSelectAll(c *gin.Context) {
	var req SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	s.session.SelectAll(*req.Checked)
	s.handleGetTokens(c)
}

func (s *APIServer) handleRevoke(c *gin.Context) {
	result, err := s.session.RevokeSelected(detached(c))
	if errors.Is(err, revoke.ErrEmptySelection) {
		c.JSON(http.StatusOK, gin.H{"info": session.MsgSelectToRevoke})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": RevokeResponse{
		Signature: result.Signature.String(),
		Count:     result.Count(),
		Mints:     result.Mints,
	}})
}

func (s *APIServer) handleGetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.feed.Active(time.Now())})
}

func (s *APIServer) handleGetReceipts(c *gin.Context) {
	receipts, err := s.session.Receipts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownMint):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotConnected),
		errors.Is(err, wallet.ErrProviderNotFound),
		errors.Is(err, wallet.ErrWrongProvider),
		errors.Is(err, wallet.ErrUserRejected):
		return http.StatusBadRequest
	case errors.Is(err, chain.ErrConfirmationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
