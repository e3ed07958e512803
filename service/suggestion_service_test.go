package service

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-workout/domain"
)

func suggestionDefaults() domain.SuggestionInput {
	return domain.SuggestionInput{RateMin: 4, RateMax: 8, AvailableTerms: []int{240, 360}}
}

func TestSuggestionService_RanksByRequestedPayment(t *testing.T) {
	f := newFixture(t)
	id := openSession(t, f)
	svc := NewSuggestionService(f.sessions, NewAIService("", quietLogger()), quietLogger(), suggestionDefaults())

	res, err := svc.Suggest(context.Background(), id, domain.SuggestionInput{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 650.0, res.TargetPayment)
	require.Len(t, res.Suggestions, 3)
	for i := 1; i < len(res.Suggestions); i++ {
		assert.GreaterOrEqual(t, res.Suggestions[i-1].Score, res.Suggestions[i].Score)
	}
	top := res.Suggestions[0]
	assert.Contains(t, []int{240, 360}, top.Term)
	assert.GreaterOrEqual(t, top.InterestRate, 4.0)
	assert.LessOrEqual(t, top.InterestRate, 8.0)
	assert.Contains(t, top.Reason, "requested")
	assert.Greater(t, top.NotePrice, 0.0)
}

func TestSuggestionService_EvaluatesEveryPair(t *testing.T) {
	f := newFixture(t)
	id := openSession(t, f)
	svc := NewSuggestionService(f.sessions, NewAIService("", quietLogger()), quietLogger(), suggestionDefaults())

	res, err := svc.Suggest(context.Background(), id, domain.SuggestionInput{
		RateMin: 5, RateMax: 6, RateStep: 0.5, AvailableTerms: []int{120, 180}, Limit: 100,
	})
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 6)

	seen := map[float64]bool{}
	for _, s := range res.Suggestions {
		seen[s.InterestRate] = true
	}
	assert.Equal(t, map[float64]bool{5: true, 5.5: true, 6: true}, seen)
}

func TestSuggestionService_Validation(t *testing.T) {
	f := newFixture(t)
	id := openSession(t, f)
	svc := NewSuggestionService(f.sessions, NewAIService("", quietLogger()), quietLogger(), suggestionDefaults())
	ctx := context.Background()

	cases := map[string]domain.SuggestionInput{
		"inverted":   {RateMin: 9, RateMax: 5},
		"zero rate":  {RateMin: 0, RateMax: 5},
		"bad term":   {RateMin: 4, RateMax: 5, AvailableTerms: []int{0}},
		"long term":  {RateMin: 4, RateMax: 5, AvailableTerms: []int{MaxTermMonths + 1}},
		"wide range": {RateMin: 1, RateMax: 99},
		"tiny step":  {RateMin: 1, RateMax: 51, RateStep: 1e-9, AvailableTerms: []int{360}},
		"nan step":   {RateMin: 4, RateMax: 5, RateStep: math.NaN()},
		"grid too big": {
			RateMin: 1, RateMax: 51, RateStep: 0.01,
			AvailableTerms: []int{60, 120, 180, 240, 300, 360},
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Suggest(ctx, id, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.Suggest(ctx, "missing", domain.SuggestionInput{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateSuggestionInput_BoundsTheGrid(t *testing.T) {
	in := domain.SuggestionInput{
		RateMin: 1, RateMax: 51, RateStep: 0.25,
		AvailableTerms: []int{60, 120, 180, 240, 300, 360, 420, 480, 540, 600},
	}
	require.NoError(t, validateSuggestionInput(in))
	assert.Equal(t, 201, rateSteps(in))

	in.RateStep = 0.0005
	assert.ErrorIs(t, validateSuggestionInput(in), ErrInvalidInput)

	in.RateStep = MinSuggestionRateStep
	assert.ErrorIs(t, validateSuggestionInput(in), ErrInvalidInput, "5001 rates x 10 terms")

	in.RateMax = 5
	in.AvailableTerms = in.AvailableTerms[:1]
	require.NoError(t, validateSuggestionInput(in))
}

func TestSuggestionService_UsesAIExplanation(t *testing.T) {
	var got OpenAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Best fit for the borrower."}}]}`))
	}))
	defer server.Close()

	ai := NewAIService("test-key", quietLogger())
	ai.apiURL = server.URL

	f := newFixture(t)
	id := openSession(t, f)
	svc := NewSuggestionService(f.sessions, ai, quietLogger(), suggestionDefaults())

	res, err := svc.Suggest(context.Background(), id, domain.SuggestionInput{})
	require.NoError(t, err)
	assert.Equal(t, "Best fit for the borrower.", res.Suggestions[0].Reason)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "$650.00")
}

func TestAIService_FallsBackOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	ai := NewAIService("test-key", quietLogger())
	ai.apiURL = server.URL
	top := domain.Suggestion{Term: 360, InterestRate: 6, MonthlyPayment: 640.12, NotePrice: 50123.45}

	assert.Equal(t, fallbackExplanation(top, 650), ai.ExplainSuggestion(context.Background(), top, 650, 100000, nil))
	assert.Contains(t, fallbackExplanation(top, 0), "highest note price")
}

func TestScoreWithoutTarget(t *testing.T) {
	s := []domain.Suggestion{{NotePrice: 100}, {NotePrice: 50}}
	score(s, 0)
	assert.Equal(t, 10.0, s[0].Score)
	assert.Equal(t, 5.0, s[1].Score)
}
