// internal/interface/repository/criteria_parser_repo.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/domain/repository"
	"flightdeck-service/pkg/logger"
)

// HTTPCriteriaParser calls the external natural-language criteria parser
// service. The service is a black box that answers with a partial criteria
// patch; any failure here is recoverable for the caller.
type HTTPCriteriaParser struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewHTTPCriteriaParser creates a parser client. Pass the client produced by
// the oauth package when the service requires authentication; a nil client
// falls back to a plain one with a sane timeout.
func NewHTTPCriteriaParser(baseURL string, client *http.Client, log logger.Logger) repository.CriteriaParser {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPCriteriaParser{
		logger:  log,
		baseURL: baseURL,
		client:  client,
	}
}

// Parse sends the text to the parser service and decodes the patch.
func (p *HTTPCriteriaParser) Parse(ctx context.Context, text string) (*entity.CriteriaPatch, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/parse", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call criteria parser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("criteria parser returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Criteria *entity.CriteriaPatch `json:"criteria"`
		Error    struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode parser response: %w", err)
	}
	if response.Criteria == nil {
		return nil, fmt.Errorf("criteria parser answered without criteria: %s", response.Error.Message)
	}

	p.logger.Debug("criteria parsed", "text", text)
	return response.Criteria, nil
}
