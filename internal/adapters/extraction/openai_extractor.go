package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/platform/logging"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You extract data from vendor invoices.
Extract vendor, amount, description, invoice date and invoice number from the invoice.
Answer with one JSON object and nothing else:
{"vendor": string, "amount": number, "description": string, "invoiceDate": "YYYY-MM-DD", "invoiceNumber": string}
The amount is the invoice total as a plain number without currency symbols.`

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1"

// maxTextBytes bounds the document text sent to the model.
const maxTextBytes = 64 << 10

// OpenAIConfig configures the OpenAI-compatible extractor.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty for api.openai.com
	Model   string
}

// OpenAIExtractor asks a chat completion model for the invoice fields.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

func NewOpenAIExtractor(cfg OpenAIConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai extractor: api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIExtractor{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

var _ portssvc.Extractor = (*OpenAIExtractor)(nil)

func (e *OpenAIExtractor) Extract(ctx context.Context, data []byte, mimeType string, source domain.FileRef) (*domain.InvoiceCandidate, error) {
	userMessage, err := documentMessage(data, mediaType(mimeType), source.FileName)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			userMessage,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
	})
	if err != nil {
		logging.FromContext(ctx).Error("Extraction model call failed",
			slog.String("model", e.model),
			slog.String("file_name", source.FileName),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: model call failed: %v", apperrors.ErrExtractionFailed, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: model returned no answer", apperrors.ErrExtractionFailed)
	}

	logging.FromContext(ctx).Debug("Extraction model answered",
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens))

	return parseInvoiceJSON([]byte(stripCodeFence(resp.Choices[0].Message.Content)), source)
}

func documentMessage(data []byte, mt, fileName string) (openai.ChatCompletionMessage, error) {
	switch {
	case isTextLike(mt):
		text := data
		if len(text) > maxTextBytes {
			text = text[:maxTextBytes]
		}
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Invoice document %q:\n\n%s", fileName, text),
		}, nil
	case imageTypes[mt]:
		dataURL := fmt.Sprintf("data:%s;base64,%s", mt, base64.StdEncoding.EncodeToString(data))
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf("Invoice document %q is attached as an image.", fileName)},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh}},
			},
		}, nil
	default:
		return openai.ChatCompletionMessage{}, fmt.Errorf("%w: unsupported document type %q", apperrors.ErrExtractionFailed, mt)
	}
}

// stripCodeFence removes a ```json fence some OpenAI-compatible servers add despite the response format.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
