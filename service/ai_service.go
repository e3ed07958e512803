package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"loan-workout/domain"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

// AIService writes a short operator-facing explanation for the top option
// suggestion. Without an API key it falls back to a fixed template.
type AIService struct {
	apiKey     string
	apiURL     string
	enabled    bool
	httpClient *http.Client
	log        *logrus.Logger
}

type OpenAIRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func NewAIService(apiKey string, log *logrus.Logger) *AIService {
	return &AIService{
		apiKey:  apiKey,
		apiURL:  openAIURL,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// ExplainSuggestion explains why the suggestion fits the borrower's request.
func (s *AIService) ExplainSuggestion(
	ctx context.Context,
	top domain.Suggestion,
	target float64,
	newUPB float64,
	alternatives []domain.Suggestion,
) string {
	if !s.enabled {
		return fallbackExplanation(top, target)
	}

	var alts bytes.Buffer
	for _, a := range alternatives {
		fmt.Fprintf(&alts, "- %d months at %.2f%%: $%.2f per month, note price $%.2f\n",
			a.Term, a.InterestRate, a.MonthlyPayment, a.NotePrice)
	}

	prompt := fmt.Sprintf(`A delinquent loan is being restructured. Explain to the workout operator, in 2-3 sentences, why this option is the best fit.

LOAN:
- New principal balance after the workout: $%.2f
- Borrower's requested monthly payment: $%.2f

RECOMMENDED OPTION:
- Term: %d months
- Interest rate: %.2f%%
- Monthly payment: $%.2f
- Note price at a 14%% yield: $%.2f

ALTERNATIVES:
%s
Be specific with the numbers.`,
		newUPB, target, top.Term, top.InterestRate, top.MonthlyPayment, top.NotePrice, alts.String())

	explanation, err := s.callLLM(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Warn("AI explanation failed, using fallback")
		return fallbackExplanation(top, target)
	}
	return explanation
}

func (s *AIService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := OpenAIRequest{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{
				Role:    "system",
				Content: "You are a loan workout analyst. You explain restructuring options to servicing staff clearly and precisely, quoting the figures you are given and nothing else.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: 200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", err
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return openAIResp.Choices[0].Message.Content, nil
}

func fallbackExplanation(top domain.Suggestion, target float64) string {
	if target <= 0 {
		return fmt.Sprintf("%d months at %.2f%% gives the highest note price ($%.2f) with a monthly payment of $%.2f.",
			top.Term, top.InterestRate, top.NotePrice, top.MonthlyPayment)
	}
	return fmt.Sprintf("%d months at %.2f%% brings the monthly payment to $%.2f against the requested $%.2f, with a note price of $%.2f.",
		top.Term, top.InterestRate, top.MonthlyPayment, target, top.NotePrice)
}
