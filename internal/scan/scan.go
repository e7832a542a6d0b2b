package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Medication is one medication line extracted from a prescription image.
type Medication struct {
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Instructions   string `json:"instructions"`
	Refills        int    `json:"refills"`
	MedicationType string `json:"medicationType"`
}

// Prescription is the structured result of a prescription scan.
type Prescription struct {
	DoctorName  string       `json:"doctorName"`
	Date        string       `json:"date"`
	Pharmacy    string       `json:"pharmacy,omitempty"`
	Medications []Medication `json:"medications"`
	Notes       string       `json:"notes,omitempty"`
}

// Service analyzes prescription images. Gemini vision is the primary
// analyzer; when it is unavailable or fails, the OCR.space text pipeline
// takes over.
type Service struct {
	client *genai.Client
	model  string
	ocr    *OCRClient
}

// NewService initializes the Gemini client. An empty apiKey disables the
// vision analyzer and every scan goes straight to OCR.
func NewService(ctx context.Context, apiKey, model, ocrKey string) (*Service, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	s := &Service{model: model, ocr: NewOCRClient(ocrKey)}
	if apiKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.client = client
	}
	return s, nil
}

// Close releases the underlying Gemini connection.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

const analyzePrompt = `You are a medical prescription analyzer. Extract all relevant information from the prescription image.
Parse the prescription and return the data in a structured JSON format including:
- Doctor's name
- Prescription date
- Pharmacy (if mentioned)
- List of medications, each with: name, dosage, frequency, instructions, refills, medicationType (tablet/capsule/liquid)
- Any additional notes

Use the exact JSON format:
{
  "doctorName": "string",
  "date": "YYYY-MM-DD",
  "pharmacy": "string",
  "medications": [
    {
      "name": "string",
      "dosage": "string",
      "frequency": "string",
      "instructions": "string",
      "refills": 0,
      "medicationType": "string"
    }
  ],
  "notes": "string"
}

If you cannot read some information clearly, use your best guess but include a note about the uncertainty.`

// Analyze extracts structured prescription details from raw image bytes.
func (s *Service) Analyze(ctx context.Context, image []byte, mimeType string) (*Prescription, error) {
	if s.client != nil {
		prescription, err := s.analyzeVision(ctx, image, mimeType)
		if err == nil {
			return prescription, nil
		}
		log.Printf("WARNING: vision analysis failed, falling back to OCR: %v", err)
	}

	text, err := s.ocr.ExtractText(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze prescription: %w", err)
	}
	return ParseExtractedText(text), nil
}

func (s *Service) analyzeVision(ctx context.Context, image []byte, mimeType string) (*Prescription, error) {
	model := s.client.GenerativeModel(s.model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analyzePrompt)},
	}

	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		format = "jpeg"
	}

	res, err := model.GenerateContent(ctx,
		genai.Text("Please analyze this prescription image and extract all medication information."),
		genai.ImageData(format, image),
	)
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", err)
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type %T", res.Candidates[0].Content.Parts[0])
	}

	var prescription Prescription
	if err := json.Unmarshal([]byte(text), &prescription); err != nil {
		return nil, fmt.Errorf("invalid response format from AI analysis: %w", err)
	}
	if prescription.DoctorName == "" || prescription.Date == "" || len(prescription.Medications) == 0 {
		return nil, fmt.Errorf("failed to extract complete prescription information from image")
	}
	return &prescription, nil
}
