package infra

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"pricefeed/internal/etl"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// fenceRe strips an optional markdown code block (```csv … ```) the model
// tends to wrap its answer in.
var fenceRe = regexp.MustCompile("(?is)```(?:csv)?\\s*(.*?)```")

// DefaultPrompt is used when no prompt override is configured. The column
// names must match the upload format so the extracted rows flow through the
// same normalization path.
const DefaultPrompt = `Read the attached supplier invoice image and return every line item ` +
	`as CSV with exactly these columns: Producto,Fecha 1,Provedor,Precio,Porcentaje de IVA. ` +
	`Use the invoice date for every row, keep prices exactly as printed, and answer ` +
	`with the CSV only.`

// VisionConfig tunes the invoice extraction request.
type VisionConfig struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// VisionExtractor asks a vision-capable chat model to read an invoice image
// and answer with CSV rows in the same column shape as a native upload.
type VisionExtractor struct {
	cli *openai.Client
	cfg VisionConfig
}

func NewVisionExtractor(apiKey string, cfg VisionConfig) *VisionExtractor {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &VisionExtractor{cli: openai.NewClient(apiKey), cfg: cfg}
}

// Extract sends the image and parses the CSV answer. A response with no
// content or no data rows is a fatal extraction error — it must never pass
// downstream as a silent zero-row success.
func (v *VisionExtractor) Extract(ctx context.Context, image []byte, imageName string) (*etl.RecordSet, error) {
	encoded := base64.StdEncoding.EncodeToString(image)

	resp, err := v.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.cfg.Model,
		MaxTokens:   v.cfg.MaxTokens,
		Temperature: v.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: v.cfg.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("vision request: empty response for %s", imageName)
	}

	rs, err := parseExtractionCSV(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("vision response for %s: %w", imageName, err)
	}

	log.Info().Str("image", imageName).Int("rows", len(rs.Rows)).
		Msg("extracted invoice rows")
	return rs, nil
}

func parseExtractionCSV(content string) (*etl.RecordSet, error) {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	return etl.ParseCSV([]byte(content))
}
