package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultSerpAPIBaseURL = "https://serpapi.com/search.json"

// SearchClient queries SerpAPI's Google engine for web search results.
type SearchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// SearchOption configures a SearchClient.
type SearchOption func(*SearchClient)

// WithSearchAPIKey sets the SerpAPI key. When unset, the client reads
// SERPAPI_API_KEY at call time.
func WithSearchAPIKey(key string) SearchOption {
	return func(c *SearchClient) { c.apiKey = key }
}

// WithSearchBaseURL overrides the SerpAPI endpoint.
func WithSearchBaseURL(u string) SearchOption {
	return func(c *SearchClient) { c.baseURL = u }
}

// WithSearchHTTPClient sets the HTTP client used for requests.
func WithSearchHTTPClient(hc *http.Client) SearchOption {
	return func(c *SearchClient) { c.httpClient = hc }
}

// WithSearchMaxResults caps how many organic results are rendered.
func WithSearchMaxResults(n int) SearchOption {
	return func(c *SearchClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// NewSearchClient creates a web search client.
func NewSearchClient(opts ...SearchOption) *SearchClient {
	c := &SearchClient{
		baseURL:    defaultSerpAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxResults: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type serpAnswerBox struct {
	Answer  string `json:"answer"`
	Snippet string `json:"snippet"`
	Title   string `json:"title"`
}

type serpKnowledgeGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type serpOrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serpResponse struct {
	Error          string              `json:"error"`
	AnswerBox      *serpAnswerBox      `json:"answer_box"`
	KnowledgeGraph *serpKnowledgeGraph `json:"knowledge_graph"`
	OrganicResults []serpOrganicResult `json:"organic_results"`
}

// Search runs a Google search and renders the results as plain text.
func (c *SearchClient) Search(ctx context.Context, query string) (string, error) {
	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("SERPAPI_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("SERPAPI_API_KEY environment variable is not set")
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("api_key", apiKey)
	q.Set("num", fmt.Sprintf("%d", c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var sr serpResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}
	if sr.Error != "" {
		return "", fmt.Errorf("search api error: %s", sr.Error)
	}

	return renderSearchResults(query, &sr, c.maxResults), nil
}

func renderSearchResults(query string, sr *serpResponse, maxResults int) string {
	var b strings.Builder

	if ab := sr.AnswerBox; ab != nil {
		answer := ab.Answer
		if answer == "" {
			answer = ab.Snippet
		}
		if answer != "" {
			if ab.Title != "" {
				fmt.Fprintf(&b, "Answer: %s (%s)\n\n", answer, ab.Title)
			} else {
				fmt.Fprintf(&b, "Answer: %s\n\n", answer)
			}
		}
	}
	if kg := sr.KnowledgeGraph; kg != nil && kg.Description != "" {
		fmt.Fprintf(&b, "%s: %s\n\n", kg.Title, kg.Description)
	}

	if len(sr.OrganicResults) == 0 {
		if b.Len() > 0 {
			return strings.TrimRight(b.String(), "\n")
		}
		return fmt.Sprintf("No search results found for %q.", query)
	}

	fmt.Fprintf(&b, "Search results for %q:\n", query)
	count := len(sr.OrganicResults)
	if count > maxResults {
		count = maxResults
	}
	for i := 0; i < count; i++ {
		r := sr.OrganicResults[i]
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RegisterSearchTools adds the web_search tool backed by the given client.
func RegisterSearchTools(t *Tools, c *SearchClient) error {
	return t.Register("web_search", ToolDef{
		Description: "Search the web with Google for current information, news, and facts. Returns the top results with titles, links, and snippets.",
		Params: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "The search query",
				Required:    true,
			},
		},
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			query, ok := params["query"].(string)
			if !ok || strings.TrimSpace(query) == "" {
				return "", fmt.Errorf("query parameter is required")
			}
			return c.Search(ctx, query)
		},
	})
}
