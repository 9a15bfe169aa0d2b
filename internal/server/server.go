// Package server wires the HTTP surface: the analyze endpoint, report
// generation, analysis history and health probes.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/psychai/psychai/internal/extract"
	"github.com/psychai/psychai/internal/llm"
	"github.com/psychai/psychai/internal/prompt"
	"github.com/psychai/psychai/internal/report"
	"github.com/psychai/psychai/internal/storage"
)

// Analyzer is the LLM round trip as the handlers see it.
type Analyzer interface {
	Analyze(ctx context.Context, system, user string) (string, error)
	Model() string
}

// HistoryStore is what the handlers need from persistence. A disabled store
// still satisfies it; Enabled gates the behavior.
type HistoryStore interface {
	Enabled() bool
	Ping(ctx context.Context) error
	SaveAnalysis(ctx context.Context, patientName, model, rawResponse string) (string, error)
	RecentAnalyses(ctx context.Context, limit int) ([]storage.AnalysisRecord, error)
}

type Server struct {
	llm   Analyzer
	store HistoryStore
	pdf   *report.Generator
	log   zerolog.Logger
}

func New(analyzer Analyzer, store HistoryStore, pdf *report.Generator, log zerolog.Logger) *Server {
	return &Server{
		llm:   analyzer,
		store: store,
		pdf:   pdf,
		log:   log.With().Str("component", "http").Logger(),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(s.log),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/readyz", s.handleReady)

	api := router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/report", s.handleReport)
		api.GET("/history", s.handleHistory)
	}

	return router
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.store.Enabled() {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var intake prompt.Intake
	if err := c.ShouldBindJSON(&intake); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(intake.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing patient name"})
		return
	}

	raw, err := s.llm.Analyze(c.Request.Context(), prompt.SystemPrompt, prompt.Build(intake))
	if err != nil {
		var provErr *llm.ProviderError
		if errors.As(err, &provErr) {
			s.log.Error().Int("upstream_status", provErr.Status).Str("detail", provErr.Detail).Msg("analysis failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed", "details": provErr.Detail})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed", "details": err.Error()})
		return
	}

	plan := extract.TreatmentPlan(raw)
	diagnoses := extract.Diagnoses(raw)
	confidences := extract.Confidences(raw)
	cleaned := report.CleanText(raw)

	if s.store.Enabled() {
		if _, err := s.store.SaveAnalysis(c.Request.Context(), intake.Name, s.llm.Model(), raw); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist analysis")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"plain_text":      raw,
		"html":            report.NewlineToBreak(raw),
		"treatment_plan":  report.NewlineToBreak(plan),
		"diagnoses":       diagnoses,
		"confidences":     confidences,
		"confidence_html": report.ConfidenceBars(confidences),
		"report_html":     report.DiagnosisSections(cleaned),
		"medications":     extract.MedicationsBlock(raw),
		"model":           s.llm.Model(),
	})
}

type reportRequest struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
	SelectedDiagnoses   []string `json:"selected_diagnoses"`
	AdditionalDiagnoses string   `json:"additional_diagnoses"`
	TherapyType         string   `json:"therapy_type"`
	Sessions            int      `json:"sessions"`
	Medications         string   `json:"medications"`
	ClinicalNotes       string   `json:"clinical_notes"`
	FollowUp            string   `json:"follow_up"`
	Urgency             string   `json:"urgency"`
}

func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing patient name"})
		return
	}

	followUp := time.Now()
	if req.FollowUp != "" {
		parsed, err := time.Parse("2006-01-02", req.FollowUp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "follow_up must be YYYY-MM-DD"})
			return
		}
		followUp = parsed
	}

	urgency := req.Urgency
	switch urgency {
	case "":
		urgency = "Medium"
	case "Low", "Medium", "High":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "urgency must be Low, Medium or High"})
		return
	}

	doc, err := s.pdf.Generate(report.ClinicalReport{
		PatientName:   req.Name,
		Age:           req.Age,
		Gender:        req.Gender,
		Diagnoses:     report.CombineDiagnoses(req.SelectedDiagnoses, req.AdditionalDiagnoses),
		TherapyType:   req.TherapyType,
		Sessions:      req.Sessions,
		Medications:   req.Medications,
		ClinicalNotes: req.ClinicalNotes,
		FollowUp:      followUp,
		Urgency:       urgency,
	})
	if err != nil {
		var renderErr *report.RenderError
		if errors.As(err, &renderErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "failed to generate report",
				"details": renderErr.Error() + "; please check the input text for any unusual characters or formatting",
			})
			return
		}
		s.log.Error().Err(err).Msg("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": doc.Filename,
		"size":     len(doc.Bytes),
		"pdf":      base64.StdEncoding.EncodeToString(doc.Bytes),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	if !s.store.Enabled() {
		c.JSON(http.StatusOK, gin.H{"analyses": []storage.AnalysisRecord{}, "db": "disabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := s.store.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if records == nil {
		records = []storage.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records})
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
