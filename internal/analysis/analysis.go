// Package analysis validates uploaded complaint photos against the declared
// issue type by calling the external image-classification service. A photo
// that the classifier accepts comes back with a generated description the
// citizen may edit; a rejected photo comes back with the rejection reason.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"nagarseva/backend/internal/config"
	"nagarseva/backend/internal/models"
)

// ErrAnalysisFailed wraps classification transport, timeout, and decode
// failures. Callers fall back to manual description entry; it is never the
// same outcome as a relevant/irrelevant verdict.
var ErrAnalysisFailed = errors.New("image analysis failed")

// ErrUnknownIssueType is a caller error: the issue type must be chosen from
// the fixed vocabulary before any image bytes are sent out.
var ErrUnknownIssueType = errors.New("unknown issue type")

// Result is the transient verdict for one uploaded image. It is never
// persisted.
type Result struct {
	// IsRelevant is true when the classifier accepted the image as evidence
	// for the declared issue type.
	IsRelevant bool `json:"is_relevant"`
	// Description is a generated natural-language description, present when
	// relevant. Treated as an editable default by callers.
	Description string `json:"description,omitempty"`
	// Reason explains a rejection, present when not relevant. The caller
	// must discard the held media reference.
	Reason string `json:"reason,omitempty"`
}

// Gate communicates with the classification service over HTTP.
type Gate struct {
	baseURL    string
	httpClient *http.Client
}

// NewGate creates a Gate targeting the given classification service base URL.
func NewGate(baseURL string) *Gate {
	return &Gate{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type classifyRequest struct {
	Image     string `json:"image"`
	IssueType string `json:"issue_type"`
}

// Analyze submits the image plus the declared issue type for classification.
// Exactly one attempt is made; any transport or malformed-response failure is
// surfaced as ErrAnalysisFailed.
func (g *Gate) Analyze(ctx context.Context, imageBytes []byte, issueType string) (*Result, error) {
	if !models.IsValidIssueType(issueType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIssueType, issueType)
	}

	ctx, cancel := context.WithTimeout(ctx, config.AnalysisTimeout)
	defer cancel()

	body, err := json.Marshal(classifyRequest{
		Image:     base64.StdEncoding.EncodeToString(imageBytes),
		IssueType: issueType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrAnalysisFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAnalysisFailed, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrAnalysisFailed, err)
	}
	return &result, nil
}
