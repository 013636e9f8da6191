// Package assistant implements the explanation service against an
// OpenAI-compatible chat completions gateway.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"meditrack/config"
	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultGatewayTimeout = 10 * time.Second

// gatewayClient is a concrete implementation of the ExplanationService
// interface. All calls are decorative: callers substitute deterministic
// fallbacks on any error, so this client never retries.
type gatewayClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientParams holds dependencies for the gateway client, injected by Fx.
type ClientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGatewayClient is the constructor for gatewayClient.
func NewGatewayClient(params ClientParams) (service.ExplanationService, error) {
	cfg := params.Config.Assistant
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("assistant gateway baseUrl must be provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &gatewayClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: params.Logger,
	}, nil
}

// chatMessage is one message of the chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the OpenAI-compatible request body.
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatCompletionResponse is the subset of the response body we read.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExplainAction generates a short explanation of a custody action.
func (c *gatewayClient) ExplainAction(ctx context.Context, dc service.DrugContext, action string, role entity.Role) (string, error) {
	system := "You are a pharmaceutical supply chain assistant. Explain supply chain actions " +
		"in simple, reassuring language for patients and supply chain workers. Keep responses " +
		"to 2-3 sentences.\n\n" + buildContextPrompt(dc)
	user := fmt.Sprintf("Explain this action: %s, performed by role: %s.", action, role)

	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
}

// AssessAuthenticity generates a brief verification assessment of the
// drug's recorded history.
func (c *gatewayClient) AssessAuthenticity(ctx context.Context, dc service.DrugContext) (string, error) {
	system := "You are a pharmaceutical verification assistant. Assess the authenticity of a drug " +
		"based on its supply chain records. Be factual and concise. If the drug is flagged or has " +
		"alerts, say so clearly and advise the consumer not to use it. Keep responses to 2-3 " +
		"sentences.\n\n" + buildContextPrompt(dc)

	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Assess the authenticity of this drug based on its supply chain history."},
	})
}

// Chat answers a free-form question, grounded on the drug context when one
// is provided. The caller bounds the history; it is forwarded verbatim.
func (c *gatewayClient) Chat(ctx context.Context, message string, dc service.DrugContext, history []service.ChatTurn) (string, error) {
	system := "You are a helpful pharmaceutical supply chain assistant. Answer questions about " +
		"drug tracking, verification, and supply chain integrity. Be concise and accurate."
	if dc.Drug != nil {
		system += "\n\n" + buildContextPrompt(dc)
	}

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	return c.complete(ctx, messages)
}

// complete sends one chat completions request and extracts the first choice.
func (c *gatewayClient) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to call assistant gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded amount for the log; the body is upstream prose.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Assistant gateway returned non-OK status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)),
		)

		return "", errors.Errorf("assistant gateway returned status %d", resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(err, "failed to decode assistant gateway response")
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("assistant gateway returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// buildContextPrompt flattens the drug context into plain text the model
// can ground on.
func buildContextPrompt(dc service.DrugContext) string {
	if dc.Drug == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Drug information:\n- Name: %s\n- Batch: %s\n- Expiry date: %s\n- Current status: %s\n",
		dc.Drug.DrugName, dc.Drug.BatchNumber, dc.Drug.ExpiryDate.Format("2006-01-02"), dc.Drug.Status)

	if len(dc.History) > 0 {
		b.WriteString("\nSupply chain history:\n")
		for _, log := range dc.History {
			fmt.Fprintf(&b, "- %s: %s by %s at %s\n",
				log.ScanTime.Format(time.RFC3339), log.VerificationResult, log.Role, log.Location)
		}
	}

	if len(dc.Alerts) > 0 {
		b.WriteString("\nAlerts:\n")
		for _, alert := range dc.Alerts {
			status := "unresolved"
			if alert.Resolved {
				status = "resolved"
			}
			fmt.Fprintf(&b, "- [%s] %s: %s\n", status, alert.AlertType, alert.Description)
		}
	}

	return b.String()
}
