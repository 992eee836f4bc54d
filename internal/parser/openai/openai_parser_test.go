package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/config"
	"finextract/internal/parser"
	"finextract/internal/parser/openai"
	"finextract/internal/port"
)

var testInput = port.ParseInput{
	Excerpt:   "Total Revenue FY 25 1,234.50 FY 24 980.00",
	LineItems: []string{"Total Revenue", "PAT"},
}

func newTestParser(serverURL string) *openai.Parser {
	return openai.NewParserWithEndpoint(&config.ParserProviderConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		TimeoutSecs: 30,
	}, serverURL)
}

func chatResponse(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestOpenAIParser_Parse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(1500), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		assert.Contains(t, msg["content"], testInput.Excerpt)

		_ = json.NewEncoder(w).Encode(chatResponse(
			`{"Currency":"Unknown","Years":["FY 25","FY 24"],"Items":{"PAT":{"FY 25":45678,"FY 24":"Not Found"}}}`, "stop"))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	assert.Equal(t, []string{"FY 25", "FY 24"}, out.Result.Years)
	assert.Equal(t, "45678", out.Result.Items["PAT"]["FY 25"])
}

func TestOpenAIParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), testInput)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestOpenAIParser_Parse_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), testInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIParser_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse(`{"Currency":"INR","Years":["FY 25"]`, "length"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), testInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "output truncated")
	assert.ErrorIs(t, err, parser.ErrMalformedResponse)
}

func TestOpenAIParser_Parse_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse(`{"Items":{}}`, "stop"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestParser(server.URL).Parse(ctx, testInput)
	assert.ErrorIs(t, err, context.Canceled)
}
