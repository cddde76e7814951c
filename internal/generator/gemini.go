package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/telemetry"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 32 << 20

// GeminiConfig configures the Gemini generateContent endpoint
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DefaultGeminiConfig returns the production endpoint and models
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		TextModel:  "gemini-2.0-flash",
		ImageModel: "gemini-2.0-flash-exp-image-generation",
		Timeout:    60 * time.Second,
	}
}

// Gemini generates content with the Gemini REST API
type Gemini struct {
	cfg    GeminiConfig
	logger *slog.Logger
}

// Ensure Gemini implements Client
var _ Client = (*Gemini)(nil)

// NewGemini creates a Gemini client, filling unset fields from the defaults
func NewGemini(cfg GeminiConfig, logger *slog.Logger) *Gemini {
	defaults := DefaultGeminiConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaults.TextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaults.ImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gemini{cfg: cfg, logger: logger.With(slog.String("component", "gemini"))}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType   string             `json:"responseMimeType,omitempty"`
	ResponseJSONSchema *jsonschema.Schema `json:"responseJsonSchema,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// GenerateWorld asks for a world built from both players' picks
func (g *Gemini) GenerateWorld(ctx context.Context, req WorldRequest) (world *model.World, err error) {
	ctx, span := telemetry.Start(ctx, "generator.world", attribute.String("gen_ai.request.model", g.cfg.TextModel))
	defer func() { telemetry.End(span, err) }()

	body, err := g.generate(ctx, g.cfg.TextModel, worldPrompt(req), generationConfig{
		ResponseMimeType:   "application/json",
		ResponseJSONSchema: WorldSchema(),
	})
	if err != nil {
		return nil, generationError("world", err)
	}
	world, err = ParseWorld([]byte(responseText(body)))
	if err != nil {
		g.logger.Warn("unparsable world response", slog.String("error", err.Error()))
		return nil, generationError("world", err)
	}
	return world, nil
}

// GenerateCard asks for a single card fitting the world and themes
func (g *Gemini) GenerateCard(ctx context.Context, req CardRequest) (card *CardDraft, err error) {
	ctx, span := telemetry.Start(ctx, "generator.card", attribute.String("gen_ai.request.model", g.cfg.TextModel))
	defer func() { telemetry.End(span, err) }()

	body, err := g.generate(ctx, g.cfg.TextModel, cardPrompt(req), generationConfig{
		ResponseMimeType:   "application/json",
		ResponseJSONSchema: CardSchema(),
	})
	if err != nil {
		return nil, generationError("card", err)
	}
	card, err = ParseCard([]byte(responseText(body)))
	if err != nil {
		g.logger.Warn("unparsable card response", slog.String("error", err.Error()))
		return nil, generationError("card", err)
	}
	return card, nil
}

// GenerateImage asks the image model for card art
func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) (image *Image, err error) {
	ctx, span := telemetry.Start(ctx, "generator.image", attribute.String("gen_ai.request.model", g.cfg.ImageModel))
	defer func() { telemetry.End(span, err) }()

	body, err := g.generate(ctx, g.cfg.ImageModel, imagePrompt(req), generationConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, generationError("image", err)
	}
	image, err = responseImage(body)
	if err != nil {
		return nil, generationError("image", err)
	}
	return image, nil
}

func (g *Gemini) generate(ctx context.Context, modelName, prompt string, genCfg generationConfig) ([]byte, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	requestBody, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: genCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.BaseURL, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	start := time.Now()
	res, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read generate response: %w", err)
	}
	g.logger.Debug("generate request complete",
		slog.String("model", modelName),
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body[:min(len(body), 4096)]))
		}
		return nil, fmt.Errorf("generate request status %d: %s", res.StatusCode, msg)
	}
	if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
		return nil, fmt.Errorf("prompt blocked: %s", reason)
	}
	return body, nil
}

// responseText joins the text parts of the first candidate
func responseText(body []byte) string {
	var b strings.Builder
	gjson.GetBytes(body, "candidates.0.content.parts").ForEach(func(_, p gjson.Result) bool {
		b.WriteString(p.Get("text").String())
		return true
	})
	return b.String()
}

// responseImage extracts the first inline image of the first candidate
func responseImage(body []byte) (*Image, error) {
	var (
		image  *Image
		decErr error
	)
	gjson.GetBytes(body, "candidates.0.content.parts").ForEach(func(_, p gjson.Result) bool {
		inline := p.Get("inlineData")
		if !inline.Exists() {
			return true
		}
		data, err := base64.StdEncoding.DecodeString(inline.Get("data").String())
		if err != nil {
			decErr = fmt.Errorf("%w: image data: %v", ErrUnparsableResponse, err)
			return false
		}
		mimeType := inline.Get("mimeType").String()
		if mimeType == "" {
			mimeType = "image/png"
		}
		image = &Image{ContentType: mimeType, Data: data}
		return false
	})
	if decErr != nil {
		return nil, decErr
	}
	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: no image in response", ErrUnparsableResponse)
	}
	return image, nil
}
