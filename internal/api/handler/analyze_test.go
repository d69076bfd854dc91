package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"nagarseva/backend/internal/analysis"
	"nagarseva/backend/internal/api/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzeRouter(classifierURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHandler(nil, analysis.NewGate(classifierURL), nil, nil)
	r := gin.New()
	r.POST("/complaints/analyze", h.AnalyzeMedia)
	return r
}

func analyzeRequest(t *testing.T, issueType string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if issueType != "" {
		require.NoError(t, writer.WriteField("issue_type", issueType))
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", "evidence.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/complaints/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// TestAnalyzeEndpointRelevant returns the editable description suggestion.
func TestAnalyzeEndpointRelevant(t *testing.T) {
	classifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(analysis.Result{IsRelevant: true, Description: "Overflowing garbage bin"})
	}))
	defer classifier.Close()

	router := newAnalyzeRouter(classifier.URL)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, analyzeRequest(t, "garbage", []byte("img")))

	require.Equal(t, http.StatusOK, recorder.Code)
	var result analysis.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.True(t, result.IsRelevant)
	assert.Equal(t, "Overflowing garbage bin", result.Description)
}

// TestAnalyzeEndpointIrrelevant is still a 200: the verdict, with its reason,
// belongs to the client, which must discard the media reference.
func TestAnalyzeEndpointIrrelevant(t *testing.T) {
	classifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(analysis.Result{IsRelevant: false, Reason: "Not a garbage photo"})
	}))
	defer classifier.Close()

	router := newAnalyzeRouter(classifier.URL)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, analyzeRequest(t, "garbage", []byte("img")))

	require.Equal(t, http.StatusOK, recorder.Code)
	var result analysis.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.False(t, result.IsRelevant)
	assert.Equal(t, "Not a garbage photo", result.Reason)
}

// TestAnalyzeEndpointClassifierDown maps ErrAnalysisFailed onto a 502 with
// the manual-entry fallback hint, distinct from a rejection.
func TestAnalyzeEndpointClassifierDown(t *testing.T) {
	router := newAnalyzeRouter("http://127.0.0.1:1")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, analyzeRequest(t, "garbage", []byte("img")))

	require.Equal(t, http.StatusBadGateway, recorder.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, true, body["fallback_manual"])
}

// TestAnalyzeEndpointMissingIssueType is a caller-side validation error,
// reported before any photo bytes are examined.
func TestAnalyzeEndpointMissingIssueType(t *testing.T) {
	router := newAnalyzeRouter("http://127.0.0.1:1")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, analyzeRequest(t, "", []byte("img")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

// TestAnalyzeEndpointMissingPhoto.
func TestAnalyzeEndpointMissingPhoto(t *testing.T) {
	router := newAnalyzeRouter("http://127.0.0.1:1")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, analyzeRequest(t, "garbage", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
