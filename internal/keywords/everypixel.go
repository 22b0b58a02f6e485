package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// KeywordCount is the number of keywords requested per image. The
// keywording service orders them by confidence and that order is
// preserved all the way into the assembled post.
const KeywordCount = 5

// Client calls the Everypixel keywording endpoint. One request per
// image, no retries: a failed extraction aborts the whole upload.
type Client struct {
	BaseURL  string
	ClientID string
	APIKey   string

	httpClient *http.Client
}

func NewClient(baseURL, clientID, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		ClientID:   clientID,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Extract(ctx context.Context, image []byte) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("data", "upload")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := c.BaseURL + "?num_keywords=" + strconv.Itoa(KeywordCount)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(c.ClientID, c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keywording request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("keywording status %d", resp.StatusCode)
	}

	var result struct {
		Status   string `json:"status"`
		Keywords []struct {
			Keyword string  `json:"keyword"`
			Score   float64 `json:"score"`
		} `json:"keywords"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("keywording response: %w", err)
	}

	if result.Status != "ok" {
		return nil, fmt.Errorf("keywording status %q", result.Status)
	}

	list := make([]string, 0, len(result.Keywords))
	for _, kw := range result.Keywords {
		list = append(list, kw.Keyword)
	}
	return list, nil
}
