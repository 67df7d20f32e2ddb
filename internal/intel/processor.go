// Package intel parses free-text mission briefings into structured records
// with Gemini. Results are cached by message ID so a briefing is parsed at
// most once; the cache is the source of truth on every later request.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"mission-tracker/internal/config"
	"mission-tracker/internal/domain"
	"mission-tracker/internal/repository"
)

const prompt = `Analiza este mensaje de Discord de una comunidad de simulación militar (Arma 3).
Extrae la información y devuélvela estrictamente en formato JSON con estas claves:
"title" (nombre de la misión), "faction" (facción jugable), "location" (mapa o isla),
"date" (fecha y hora de la operación), "context" (resumen narrativo del briefing, máximo 3 frases).

Mensaje a procesar:
`

type Processor struct {
	model  *genai.GenerativeModel
	repo   *repository.IntelRepository
	logger zerolog.Logger
}

// NewProcessor builds the Gemini-backed parser. Without an API key the
// processor still serves cached intel but refuses new parses.
func NewProcessor(cfg *config.Config, repo *repository.IntelRepository, logger zerolog.Logger) (*Processor, error) {
	p := &Processor{repo: repo, logger: logger}
	if cfg.GeminiAPIKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)
	p.model = model
	return p, nil
}

// Process returns the structured intel for a briefing, cache first.
func (p *Processor) Process(ctx context.Context, messageID, rawText string) (*domain.MissionIntel, error) {
	if cached, ok, err := p.repo.Get(ctx, messageID); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	if p.model == nil {
		return nil, fmt.Errorf("intel processing disabled: no API key configured")
	}

	p.logger.Info().Str("message_id", messageID).Msg("parsing mission briefing")

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt+rawText))
	if err != nil {
		return nil, fmt.Errorf("failed to generate intel: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format")
	}

	intel := &domain.MissionIntel{MessageID: messageID, CreatedAt: time.Now()}
	cleaned := stripFences(string(text))
	if err := json.Unmarshal([]byte(cleaned), intel); err != nil {
		return nil, fmt.Errorf("failed to decode intel: %w | raw: %s", err, cleaned)
	}
	intel.MessageID = messageID

	// A failed save only costs a re-parse next time; the result is still
	// good for this caller.
	if err := p.repo.Put(ctx, intel); err != nil {
		p.logger.Warn().Err(err).Str("message_id", messageID).Msg("failed to cache intel")
	}
	return intel, nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
