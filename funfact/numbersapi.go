package funfact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public numbersapi endpoint
const DefaultBaseURL = "http://numbersapi.com"

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 64 << 10

// NumbersAPI fetches math facts from numbersapi.com
type NumbersAPI struct {
	baseURL string
	client  *http.Client
}

// NewNumbersAPI creates a client for baseURL. An empty baseURL uses
// DefaultBaseURL. The client timeout is a backstop; callers bound each
// lookup through the context.
func NewNumbersAPI(baseURL string, timeout time.Duration) *NumbersAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &NumbersAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fact fetches {baseURL}/{n}/math?json and returns its text
func (a *NumbersAPI) Fact(ctx context.Context, n int64) (string, error) {
	url := a.baseURL + "/" + strconv.FormatInt(n, 10) + "/math?json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: numbersapi returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var apiResp struct {
		Text   string `json:"text"`
		Number any    `json:"number"`
		Found  bool   `json:"found"`
		Type   string `json:"type"`
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(apiResp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty fact for %d", ErrUnavailable, n)
	}

	return text, nil
}
