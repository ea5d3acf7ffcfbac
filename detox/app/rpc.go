package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/solanahub/solblaze-detox/remediation"
	"github.com/solanahub/solblaze-detox/reputation"
	"github.com/solanahub/solblaze-detox/stake"
	"github.com/solanahub/solblaze-detox/store"
)

const internalErrorMessage = "Internal server error"

const refreshTimeout = 30 * time.Second

type errorResponse struct {
	Error string `json:"error"`
}

type exchangeRateResponse struct {
	ExchangeRate float64 `json:"exchangeRate"`
	Estimate     string  `json:"estimate,omitempty"`
}

type refreshRequest struct {
	Signature string `json:"signature" binding:"required"`
}

type planRequest struct {
	Owner        string `json:"owner" binding:"required"`
	StakeAccount string `json:"stakeAccount" binding:"required"`
}

// Handler is the api router behind cors.
func (d *Detox) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	g := router.Group("/api")
	g.GET("/validators", d.getValidators)
	g.GET("/validators/bad/sample", d.getBadSample)
	g.GET("/stake-accounts/:owner", d.getStakeAccounts)
	g.GET("/exchange-rate", d.getExchangeRate)
	g.POST("/remediation/plan", d.postRemediationPlan)
	g.POST("/pool/refresh", d.postPoolRefresh)
	g.GET("/pool/refresh/:signature", d.getPoolRefresh)
	router.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return cors.New(cors.Options{
		AllowedOrigins: d.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func (d *Detox) internalError(c *gin.Context, what string, err error) {
	d.log.Printf("%s err: %v", what, err)
	c.JSON(http.StatusInternalServerError, &errorResponse{Error: internalErrorMessage})
}

func (d *Detox) getValidators(c *gin.Context) {
	verdicts, err := d.Validators(c.Request.Context())
	if err != nil {
		d.internalError(c, "get validators", err)
		return
	}
	c.JSON(http.StatusOK, verdicts)
}

func (d *Detox) getBadSample(c *gin.Context) {
	registry, err := d.registry.Fetch(c.Request.Context())
	if err != nil {
		d.internalError(c, "get bad sample", err)
		return
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	c.JSON(http.StatusOK, reputation.SamplePerPolicy(registry.Bad, d.config.SampleSize, r))
}

func (d *Detox) getStakeAccounts(c *gin.Context) {
	owner, err := stake.ParseOwner(c.Param("owner"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &errorResponse{Error: err.Error()})
		return
	}
	views, err := d.StakeAccounts(c.Request.Context(), owner)
	if err != nil {
		d.internalError(c, "get stake accounts", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// getExchangeRate adds the pool token estimate of ?balance= SOL when given.
func (d *Detox) getExchangeRate(c *gin.Context) {
	raw, withBalance := c.GetQuery("balance")
	balance := 0.0
	if withBalance {
		var err error
		balance, err = strconv.ParseFloat(raw, 64)
		if err != nil || balance < 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
			c.JSON(http.StatusBadRequest, &errorResponse{Error: "balance must be a non-negative number"})
			return
		}
	}
	rate, err := d.rates.ExchangeRate(c.Request.Context())
	if err != nil {
		d.internalError(c, "get exchange rate", err)
		return
	}
	response := &exchangeRateResponse{ExchangeRate: rate}
	if withBalance {
		response.Estimate = remediation.Estimate(balance, rate)
	}
	c.JSON(http.StatusOK, response)
}

func (d *Detox) postRemediationPlan(c *gin.Context) {
	req := &planRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, &errorResponse{Error: "owner and stakeAccount are required"})
		return
	}
	owner, err := stake.ParseOwner(req.Owner)
	if err != nil {
		c.JSON(http.StatusBadRequest, &errorResponse{Error: err.Error()})
		return
	}
	plan, err := d.PlanRemediation(c.Request.Context(), owner, req.StakeAccount)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, plan)
	case errors.Is(err, ErrStakeAccountNotFound):
		c.JSON(http.StatusNotFound, &errorResponse{Error: err.Error()})
	case errors.Is(err, remediation.ErrRemediation):
		d.log.Printf("plan remediation of %s err: %v", req.StakeAccount, err)
		c.JSON(http.StatusUnprocessableEntity, &errorResponse{Error: err.Error()})
	default:
		d.internalError(c, "plan remediation", err)
	}
}

// postPoolRefresh answers at once; the refresh outlives the request.
func (d *Detox) postPoolRefresh(c *gin.Context) {
	req := &refreshRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, &errorResponse{Error: "signature is required"})
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// shutdown waits for the refresh instead of cancelling it
		ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), refreshTimeout)
		defer cancel()
		if err := d.pool.Notify(ctx, req.Signature); err != nil {
			d.log.Printf("pool refresh %s err: %v", req.Signature, err)
		}
	}()
	c.JSON(http.StatusAccepted, &PoolRefresh{Signature: req.Signature, Status: store.StatusPending})
}

func (d *Detox) getPoolRefresh(c *gin.Context) {
	if d.store == nil {
		c.JSON(http.StatusNotFound, &errorResponse{Error: "pool refresh ledger is disabled"})
		return
	}
	records, err := d.store.GetPoolRefresh(c.Param("signature"))
	if err != nil {
		d.internalError(c, "get pool refresh", err)
		return
	}
	c.JSON(http.StatusOK, buildPoolRefreshes(records))
}
