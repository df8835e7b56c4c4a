package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/DarkArtek/elena-118/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Wire format dell'endpoint generateContent (v1beta)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type safetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

type candidate struct {
	Content       *content       `json:"content,omitempty"`
	FinishReason  string         `json:"finishReason,omitempty"`
	SafetyRatings []safetyRating `json:"safetyRatings,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	Error          *apiError       `json:"error,omitempty"`
}

// Result esito di una generazione. Complete è falso quando Text è un
// segnaposto (risposta bloccata o vuota) o un testo troncato: va mostrato
// all'utente ma mai riusato come scheda in cache.
type Result struct {
	Text     string
	Complete bool
}

// Client client Gemini (Google Generative Language API).
// Le risposte bloccate dai filtri o vuote non sono errori: il chiamante
// riceve un testo segnaposto che spiega la condizione; errore solo per
// problemi di trasporto o errori dell'API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewClient crea il client dal blocco di configurazione (niente globali:
// modello ed endpoint sono iniettati alla costruzione)
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

// Enabled falso in modalità offline (nessuna API key configurata)
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Generate esegue una singola chiamata generateContent.
// safetySettings su BLOCK_NONE: il contesto clinico fa scattare i filtri di
// default (ferite, emorragie), la valutazione resta al blocco in risposta.
func (c *Client) Generate(ctx context.Context, systemInstruction, userPrompt string) (*Result, error) {
	request := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: userPrompt}}}},
		SafetySettings: []safetySetting{
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 4096,
		},
	}

	start := time.Now()

	var response generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))

	if err != nil {
		c.logger.Error("Gemini API call failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}

	if response.Error != nil {
		c.logger.Error("Gemini API returned error",
			zap.Int("code", response.Error.Code),
			zap.String("message", response.Error.Message),
		)
		return nil, fmt.Errorf("Gemini API error: %s", response.Error.Message)
	}

	if len(response.Candidates) == 0 {
		reason := "Sconosciuto"
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			reason = response.PromptFeedback.BlockReason
		}
		return nil, fmt.Errorf("no candidates generated, prompt block reason: %s", reason)
	}

	cand := response.Candidates[0]

	if cand.FinishReason == "SAFETY" {
		category := "Generica"
		for _, rating := range cand.SafetyRatings {
			if rating.Probability != "NEGLIGIBLE" && rating.Probability != "LOW" {
				category = rating.Category
				break
			}
		}
		c.logger.Warn("Gemini response blocked by safety filter",
			zap.String("category", category),
		)
		return &Result{
			Text: fmt.Sprintf("⚠️ Risposta bloccata per sicurezza. Categoria: %s", category),
		}, nil
	}

	var text string
	if cand.Content != nil && len(cand.Content.Parts) > 0 {
		text = cand.Content.Parts[0].Text
	}

	result := &Result{Text: text, Complete: true}
	if text == "" {
		result.Text = fmt.Sprintf("⚠️ Nessun testo generato. Status: %s.", cand.FinishReason)
		result.Complete = false
	} else if cand.FinishReason == "MAX_TOKENS" {
		result.Text += "\n\n[...Risposta troncata per limite lunghezza...]"
		result.Complete = false
	}

	c.logger.Info("Gemini generation completed",
		zap.String("model", c.model),
		zap.String("finish_reason", cand.FinishReason),
		zap.Bool("complete", result.Complete),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}
