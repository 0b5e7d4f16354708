package dashboard

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
)

// fptr maps NaN and infinities to nil so the JSON encoder never sees them.
func fptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type priceResponse struct {
	Price         *float64  `json:"price"`
	Change        *float64  `json:"change"`
	ChangePercent *float64  `json:"change_percent"`
	High52w       *float64  `json:"high_52w"`
	Low52w        *float64  `json:"low_52w"`
	Volume        *float64  `json:"volume"`
	AsOf          time.Time `json:"as_of"`
}

type performanceResponse struct {
	TotalReturn      *float64 `json:"total_return"`
	AnnualizedReturn *float64 `json:"annualized_return"`
	Volatility       *float64 `json:"volatility"`
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	MaxDrawdown      *float64 `json:"max_drawdown"`
	MeanReturn       *float64 `json:"mean_return"`
	ReturnStdDev     *float64 `json:"return_stddev"`
	Periods          int      `json:"periods"`
}

type reportResponse struct {
	RunID           string              `json:"run_id"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Symbol          string              `json:"symbol"`
	DisplayName     string              `json:"display_name"`
	Period          string              `json:"period"`
	Bars            int                 `json:"bars"`
	Snapshot        priceResponse       `json:"snapshot"`
	Indicators      *model.IndicatorSet `json:"indicators"`
	Performance     performanceResponse `json:"performance"`
	Company         model.CompanyInfo   `json:"company"`
	Classifications map[string]string   `json:"classifications"`
}

func toReportResponse(r *model.Report) reportResponse {
	return reportResponse{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Symbol:      r.Symbol,
		DisplayName: r.DisplayName,
		Period:      r.Period,
		Bars:        r.Bars,
		Snapshot: priceResponse{
			Price:         fptr(r.Snapshot.Price),
			Change:        fptr(r.Snapshot.Change),
			ChangePercent: fptr(r.Snapshot.ChangePercent),
			High52w:       fptr(r.Snapshot.High52w),
			Low52w:        fptr(r.Snapshot.Low52w),
			Volume:        fptr(r.Snapshot.Volume),
			AsOf:          r.Snapshot.AsOf,
		},
		Indicators: r.Indicators,
		Performance: performanceResponse{
			TotalReturn:      fptr(r.Performance.TotalReturn),
			AnnualizedReturn: fptr(r.Performance.AnnualizedReturn),
			Volatility:       fptr(r.Performance.Volatility),
			SharpeRatio:      fptr(r.Performance.SharpeRatio),
			MaxDrawdown:      fptr(r.Performance.MaxDrawdown),
			MeanReturn:       fptr(r.Performance.MeanReturn),
			ReturnStdDev:     fptr(r.Performance.ReturnStdDev),
			Periods:          r.Performance.Periods,
		},
		Company:         r.Company,
		Classifications: r.Classifications,
	}
}

type quoteResponse struct {
	Symbol        string    `json:"symbol"`
	Price         *float64  `json:"price"`
	PrevClose     *float64  `json:"prev_close"`
	ChangePercent *float64  `json:"change_percent"`
	Time          time.Time `json:"time"`
}

type snapshotRow struct {
	RunID            string             `json:"run_id"`
	Symbol           string             `json:"symbol"`
	Period           string             `json:"period"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Price            *float64           `json:"price"`
	TotalReturn      *float64           `json:"total_return"`
	AnnualizedReturn *float64           `json:"annualized_return"`
	Volatility       *float64           `json:"volatility"`
	SharpeRatio      *float64           `json:"sharpe_ratio"`
	MaxDrawdown      *float64           `json:"max_drawdown"`
	Indicators       map[string]float64 `json:"indicators"`
}

func toSnapshotRow(s store.Snapshot) snapshotRow {
	return snapshotRow{
		RunID:            s.RunID,
		Symbol:           s.Symbol,
		Period:           s.Period,
		GeneratedAt:      s.GeneratedAt,
		Price:            fptr(s.Price),
		TotalReturn:      fptr(s.TotalReturn),
		AnnualizedReturn: fptr(s.AnnualizedReturn),
		Volatility:       fptr(s.Volatility),
		SharpeRatio:      fptr(s.SharpeRatio),
		MaxDrawdown:      fptr(s.MaxDrawdown),
		Indicators:       s.Indicators,
	}
}

// badInput tells validation failures apart from upstream ones.
func badInput(err error) bool {
	return errors.Is(err, model.ErrInvalidSymbol) || errors.Is(err, model.ErrInvalidPeriod)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	symbol := c.Param("symbol")
	period := c.DefaultQuery("period", s.DefaultPeriod)

	rep, err := s.Tracker.Analyze(c.Request.Context(), symbol, period)
	if err != nil {
		if badInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toReportResponse(rep))
}

func (s *Server) handleHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	period := c.DefaultQuery("period", s.DefaultPeriod)

	bars, err := s.Tracker.Bars(c.Request.Context(), symbol, period)
	if err != nil {
		if badInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "period": period, "bars": bars})
}

func (s *Server) handleQuote(c *gin.Context) {
	q, err := s.Tracker.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if badInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	change := math.NaN()
	if q.PrevClose != 0 {
		change = (q.Price - q.PrevClose) / q.PrevClose
	}
	c.JSON(http.StatusOK, quoteResponse{
		Symbol:        q.Symbol,
		Price:         fptr(q.Price),
		PrevClose:     fptr(q.PrevClose),
		ChangePercent: fptr(change),
		Time:          q.Time,
	})
}

func (s *Server) handleSnapshots(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	snaps, err := s.Tracker.Snapshots(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		if badInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := make([]snapshotRow, 0, len(snaps))
	for _, snap := range snaps {
		rows = append(rows, toSnapshotRow(snap))
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": rows})
}
