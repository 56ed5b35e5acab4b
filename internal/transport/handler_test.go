package transport_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-leximed/internal/config"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/mocks"
	"go-leximed/internal/observer"
	"go-leximed/internal/service"
	"go-leximed/internal/transport"
	"go-leximed/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
	}
}

func newRouter(t *testing.T, svc *mocks.MockMedicalService) http.Handler {
	t.Helper()
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return transport.NewHandler(svc, observer.NewMetricsObserver(), nil, testConfig())
}

type part struct {
	field, filename, mediaType string
	data                       []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.mediaType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("AIConfigured").Return(true).Once()

	w := serve(newRouter(t, svc), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "available", body.Status)
	assert.True(t, body.AIConfigured)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetrics(t *testing.T) {
	pool := extractor.NewWorkerPool(2)
	pool.Start()
	defer pool.Close()
	h := transport.NewHandler(&mocks.MockMedicalService{}, observer.NewMetricsObserver(), pool, testConfig())

	w := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "pipelines")
	assert.Contains(t, body, "worker_pool")
}

func TestNutritionalScan(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("NutritionalScan", mock.Anything, mock.MatchedBy(func(in service.NutritionalScanInput) bool {
		return in.Language == "Hindi" &&
			in.Report.MediaType == "application/pdf" && string(in.Report.Data) == "%PDF" &&
			in.FoodImage.Name == "meal.jpg" && in.FoodImage.MediaType == "image/jpeg"
	})).Return(&models.NutritionalScanResponse{
		SimplifiedReport: map[string]any{"health_concerns": "High sugar"},
		FoodAnalysis:     map[string]any{"items": []any{"rice"}},
		Comparison:       map[string]any{"status": "Good Match"},
	}, nil).Once()

	req := multipartRequest(t, "/nutritional_scan", map[string]string{"lang": "Hindi"},
		part{"report_file", "report.pdf", "application/pdf", []byte("%PDF")},
		part{"food_image", "meal.jpg", "image/jpeg", []byte("jpeg")},
	)
	w := serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Good Match", body["comparison"]["status"])
	assert.Equal(t, "High sugar", body["simplified_report"]["health_concerns"])
}

func TestNutritionalScan_MissingFoodImage(t *testing.T) {
	svc := &mocks.MockMedicalService{}

	req := multipartRequest(t, "/nutritional_scan", nil,
		part{"report_file", "report.pdf", "application/pdf", []byte("%PDF")})
	w := serve(newRouter(t, svc), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "food_image is required.", detail(t, w))
	svc.AssertNotCalled(t, "NutritionalScan", mock.Anything, mock.Anything)
}

func TestSimplify_DefaultLanguage(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	raw := "plain text answer"
	svc.On("Simplify", mock.Anything, mock.MatchedBy(func(in service.SimplifyInput) bool {
		return in.Language == "English" && in.File.Name == "scan.png"
	})).Return(&models.SimplifyResponse{OriginalText: "Hb 9 g/dL", SimplifiedReportRaw: &raw}, nil).Once()

	req := multipartRequest(t, "/simplify", nil, part{"file", "scan.png", "image/png", []byte("png")})
	w := serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"original_text": "Hb 9 g/dL", "simplified_report_raw": "plain text answer"}`, w.Body.String())
}

func TestSimplify_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "extraction",
			err:        apperrors.NewExtractionError("Could not extract significant text from the file.", nil),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Could not extract significant text from the file.",
		},
		{
			name:       "upstream",
			err:        apperrors.NewUpstreamError("Failed to generate or parse simplified report", errors.New("quota")),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Failed to generate or parse simplified report: quota",
		},
		{
			name:       "plain error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "unexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockMedicalService{}
			svc.On("Simplify", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			req := multipartRequest(t, "/simplify", nil, part{"file", "scan.pdf", "application/pdf", []byte("%PDF")})
			w := serve(newRouter(t, svc), req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, detail(t, w))
		})
	}
}

func TestSimplify_NotMultipart(t *testing.T) {
	svc := &mocks.MockMedicalService{}

	w := serve(newRouter(t, svc), formRequest("/simplify", url.Values{"lang": {"English"}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file is required.", detail(t, w))
}

func TestReadPrescription(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("ReadPrescription", mock.Anything, mock.MatchedBy(func(in service.PrescriptionInput) bool {
		return in.File.MediaType == "image/png"
	})).Return(&models.PrescriptionResponse{
		Transcription: "Amoxicillin",
		Medications:   []models.Medication{{Name: "Amoxicillin", Explanation: "Antibiotic", Link: "https://x"}},
	}, nil).Once()

	req := multipartRequest(t, "/read_prescription", nil, part{"file", "rx.png", "image/png", []byte("png")})
	w := serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"transcription": "Amoxicillin", "medications": [{"name": "Amoxicillin", "explanation": "Antibiotic", "link": "https://x"}]}`,
		w.Body.String())
}

func TestReadPrescription_UndeclaredTypeReachesService(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("ReadPrescription", mock.Anything, mock.MatchedBy(func(in service.PrescriptionInput) bool {
		return in.File.MediaType == "application/octet-stream" && string(in.File.Data) == "\x89PNG"
	})).Return(&models.PrescriptionResponse{Medications: []models.Medication{}}, nil).Once()

	req := multipartRequest(t, "/read_prescription", nil,
		part{"file", "rx", "application/octet-stream", []byte("\x89PNG")})
	w := serve(newRouter(t, svc), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatReport(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("ChatReport", mock.Anything, service.ChatInput{OriginalText: "LDL 160", Question: "Is it high?"}).
		Return(&models.ChatResponse{Answer: "Yes."}, nil).Once()

	w := serve(newRouter(t, svc), formRequest("/chat_report", url.Values{
		"original_text": {"LDL 160"},
		"user_question": {"Is it high?"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer": "Yes."}`, w.Body.String())
}

func TestChatReport_MultipartForm(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("ChatReport", mock.Anything, service.ChatInput{OriginalText: "Hb 9", Question: "why"}).
		Return(&models.ChatResponse{Answer: "ok"}, nil).Once()

	req := multipartRequest(t, "/chat_report", map[string]string{"original_text": "Hb 9", "user_question": "why"})
	w := serve(newRouter(t, svc), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocateHospital(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("LocateHospital", mock.Anything, mock.MatchedBy(func(in service.HospitalInput) bool {
		return in.Keyword == "cardiology" && in.ReportJSON != nil && string(in.ReportJSON.Data) == `{"a": 1}`
	})).Return(&models.HospitalResponse{Hospitals: []models.Hospital{
		{Name: "City Hospital", Link: "https://city", Address: "Main St", Note: "Recommended based on your blood test results"},
	}}, nil).Once()

	req := multipartRequest(t, "/locate_hospital", map[string]string{"keyword": "cardiology"},
		part{"report_json", "report.json", "application/json", []byte(`{"a": 1}`)})
	w := serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Recommended based on your blood test results")
}

func TestLocateHospital_WithoutReport(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("LocateHospital", mock.Anything, service.HospitalInput{Keyword: "eye"}).
		Return(&models.HospitalResponse{Hospitals: []models.Hospital{}}, nil).Once()

	w := serve(newRouter(t, svc), formRequest("/locate_hospital", url.Values{"keyword": {"eye"}}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hospitals": []}`, w.Body.String())
}

func TestLocateHospital_MissingKeyword(t *testing.T) {
	svc := &mocks.MockMedicalService{}

	w := serve(newRouter(t, svc), formRequest("/locate_hospital", url.Values{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "keyword is required.", detail(t, w))
}

func TestRecoveryReturnsDetail(t *testing.T) {
	svc := &mocks.MockMedicalService{}
	svc.On("ChatReport", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Once()

	w := serve(newRouter(t, svc), formRequest("/chat_report", url.Values{"original_text": {"a"}, "user_question": {"b"}}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error.", detail(t, w))
}
