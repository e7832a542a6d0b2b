package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ocrEndpoint = "https://api.ocr.space/parse/image"

// OCRClient calls the OCR.space text extraction API.
type OCRClient struct {
	apiKey string
	http   *http.Client
}

func NewOCRClient(apiKey string) *OCRClient {
	return &OCRClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type ocrResponse struct {
	OCRExitCode   int `json:"OCRExitCode"`
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	ErrorMessage any `json:"ErrorMessage"`
}

// ExtractText runs OCR over the image and returns the raw text.
func (c *OCRClient) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("missing OCR.space API key")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	form := url.Values{}
	form.Set("base64Image", fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image)))
	form.Set("language", "eng")
	form.Set("scale", "true")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ocrEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from image: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR request failed with status %d", res.StatusCode)
	}

	var parsed ocrResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}
	if parsed.OCRExitCode != 1 {
		return "", fmt.Errorf("OCR processing failed with code %d: %v", parsed.OCRExitCode, parsed.ErrorMessage)
	}
	if len(parsed.ParsedResults) == 0 {
		return "", fmt.Errorf("no text detected in the image")
	}
	return parsed.ParsedResults[0].ParsedText, nil
}
