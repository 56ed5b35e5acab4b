package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go-leximed/internal/config"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/logger"
	"go-leximed/internal/observer"
	"go-leximed/internal/prompt"
	"go-leximed/internal/service"
	"go-leximed/pkg/models"
	"go-leximed/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	serviceVersion = "1.0.0"

	// multipart parts beyond this are spooled to disk by net/http
	multipartMemory = 32 << 20
)

// Form and file field names
const (
	fieldReportFile   = "report_file"
	fieldFoodImage    = "food_image"
	fieldFile         = "file"
	fieldLanguage     = "lang"
	fieldOriginalText = "original_text"
	fieldQuestion     = "user_question"
	fieldKeyword      = "keyword"
	fieldReportJSON   = "report_json"
)

type handler struct {
	svc     service.MedicalService
	metrics *observer.MetricsObserver
	pool    *extractor.WorkerPool
	uploads *validation.UploadValidator
	timeout time.Duration
}

// NewHandler builds the HTTP router. metrics and pool may be nil, in which case
// GET /metrics reports only what is available.
func NewHandler(svc service.MedicalService, metrics *observer.MetricsObserver, pool *extractor.WorkerPool, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		recovery(),
		requestID(),
		requestLogger(),
		cors(cfg.CORSAllowedOrigins),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	h := &handler{
		svc:     svc,
		metrics: metrics,
		pool:    pool,
		uploads: validation.NewUploadValidator(cfg.MaxRequestBodySize),
		timeout: cfg.RequestTimeout,
	}

	r.GET("/health", h.healthCheck)
	r.GET("/metrics", h.metricsSnapshot)

	r.POST("/nutritional_scan", h.nutritionalScan)
	r.POST("/simplify", h.simplify)
	r.POST("/read_prescription", h.readPrescription)
	r.POST("/chat_report", h.chatReport)
	r.POST("/locate_hospital", h.locateHospital)

	return r
}

func (h *handler) nutritionalScan(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := parseForm(c); err != nil {
		respondError(c, err)
		return
	}
	report, err := h.requiredFile(c, fieldReportFile)
	if err != nil {
		respondError(c, err)
		return
	}
	food, err := h.requiredFile(c, fieldFoodImage)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"report_type": report.MediaType,
		"report_size": len(report.Data),
		"food_type":   food.MediaType,
		"food_size":   len(food.Data),
	}).Debug("Processing nutritional scan request")

	resp, err := h.svc.NutritionalScan(ctx, service.NutritionalScanInput{
		Report:    report,
		FoodImage: food,
		Language:  language(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) simplify(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := parseForm(c); err != nil {
		respondError(c, err)
		return
	}
	file, err := h.requiredFile(c, fieldFile)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.svc.Simplify(ctx, service.SimplifyInput{File: file, Language: language(c)})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) readPrescription(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := parseForm(c); err != nil {
		respondError(c, err)
		return
	}
	file, err := h.requiredFile(c, fieldFile)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.svc.ReadPrescription(ctx, service.PrescriptionInput{File: file})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) chatReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := parseForm(c); err != nil {
		respondError(c, err)
		return
	}

	// blank fields are rejected by the service with a combined message
	resp, err := h.svc.ChatReport(ctx, service.ChatInput{
		OriginalText: c.Request.PostFormValue(fieldOriginalText),
		Question:     c.Request.PostFormValue(fieldQuestion),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) locateHospital(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := parseForm(c); err != nil {
		respondError(c, err)
		return
	}
	keyword := c.Request.PostFormValue(fieldKeyword)
	if err := h.uploads.ValidateField(fieldKeyword, keyword); err != nil {
		respondError(c, err)
		return
	}
	report, err := formFile(c, fieldReportJSON)
	if err != nil {
		respondError(c, err)
		return
	}
	if report != nil {
		if err := h.uploads.ValidateUpload(fieldReportJSON, report); err != nil {
			respondError(c, err)
			return
		}
	}

	resp, err := h.svc.LocateHospital(ctx, service.HospitalInput{Keyword: keyword, ReportJSON: report})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:       "available",
		Version:      serviceVersion,
		Time:         time.Now().UTC(),
		AIConfigured: h.svc.AIConfigured(),
	})
}

func (h *handler) metricsSnapshot(c *gin.Context) {
	body := gin.H{}
	if h.metrics != nil {
		body["pipelines"] = h.metrics.GetMetrics()
	}
	if h.pool != nil {
		body["worker_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *handler) requiredFile(c *gin.Context, field string) (*models.UploadedFile, error) {
	file, err := formFile(c, field)
	if err != nil {
		return nil, err
	}
	if err := h.uploads.ValidateUpload(field, file); err != nil {
		return nil, err
	}
	return file, nil
}

// parseForm reads the whole body as multipart, falling back to url-encoded forms
func parseForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = c.Request.ParseForm()
	}
	if err != nil {
		if isBodyTooLarge(err) {
			return err
		}
		return apperrors.NewValidationError("Invalid form data", err)
	}
	return nil
}

// formFile reads an optional upload fully into memory; a missing part yields nil
func formFile(c *gin.Context, field string) (*models.UploadedFile, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	f, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid upload for "+field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewValidationError("Failed to read upload "+field, err)
	}
	return &models.UploadedFile{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}

func language(c *gin.Context) string {
	if lang := strings.TrimSpace(c.Request.PostFormValue(fieldLanguage)); lang != "" {
		return lang
	}
	return prompt.DefaultLanguage
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)
	detail := apperrors.GetDetail(err)
	if isBodyTooLarge(err) {
		code = http.StatusRequestEntityTooLarge
		detail = msgBodyTooLarge
	}

	entry := logger.WithContext(c.Request.Context()).WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{Detail: detail})
}
