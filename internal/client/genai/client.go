// Package genai calls the generative-language REST API used for chapter
// lists, practice questions and notes. Requests rotate over a shuffled pool
// of API keys and fall through to the next key on failure.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNoKeys        = errors.New("no API keys available")
	ErrEmptyResponse = errors.New("empty generation response")
)

const DefaultModel = "gemini-2.5-flash"

type Options struct {
	BaseURL string
	Model   string
	Keys    []string
	Timeout time.Duration
}

type Request struct {
	Prompt string
	// Model overrides the configured model when set.
	Model string
	// JSON asks the service for an application/json response.
	JSON bool
	// Keys are tried together with the configured ones.
	Keys []string
}

type Client struct {
	http    *resty.Client
	model   string
	keys    []string
	shuffle func([]string)
}

func New(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		http:  resty.New().SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).SetTimeout(opts.Timeout),
		model: opts.Model,
		keys:  opts.Keys,
		shuffle: func(k []string) {
			rand.Shuffle(len(k), func(i, j int) { k[i], k[j] = k[j], k[i] })
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// keyPool merges extra and configured keys, drops blanks and duplicates and
// shuffles the result.
func (c *Client) keyPool(extra []string) []string {
	seen := map[string]bool{}
	var pool []string
	for _, k := range append(append([]string(nil), extra...), c.keys...) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		pool = append(pool, k)
	}
	c.shuffle(pool)
	return pool
}

// Generate returns the text of the first candidate. Each key is tried in
// turn; when all fail the last error is returned.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	pool := c.keyPool(req.Keys)
	if len(pool) == 0 {
		return "", ErrNoKeys
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	body := generateRequest{Contents: []content{{Parts: []part{{Text: req.Prompt}}}}}
	if req.JSON {
		body.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	var lastErr error
	for _, key := range pool {
		text, err := c.generate(ctx, model, key, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) generate(ctx context.Context, model, key string, body generateRequest) (string, error) {
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1beta/models/" + model + ":generateContent")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("generate failed: %s; body: %s", resp.Status(), resp.String())
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateJSON asks for JSON and decodes the answer into dest.
func (c *Client) GenerateJSON(ctx context.Context, req Request, dest any) error {
	req.JSON = true
	text, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), dest); err != nil {
		return fmt.Errorf("decode generated JSON: %w", err)
	}
	return nil
}

// CleanJSON strips markdown code fences models like to wrap JSON in.
func CleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
