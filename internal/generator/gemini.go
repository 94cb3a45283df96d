package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/unclebandit/framestorm-backend/internal/content"
	"github.com/unclebandit/framestorm-backend/internal/logger"
)

// Gemini generates content through the Gemini API. The response must be a
// JSON payload for the requested type; anything else fails the request.
type Gemini struct {
	client  *genai.Client
	model   string
	catalog *Catalog
}

func NewGemini(ctx context.Context, apiKey, model string, catalog *Catalog) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, catalog: catalog}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (content.Content, error) {
	prompt, err := g.buildPrompt(req)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, a := range req.Attachments {
		if !inlineMIME(a.MIMEType) || len(a.Data) == 0 {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate %s content: %w", req.Type, err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response for %s content", req.Type)
	}
	return ParseModelResponse(req, text)
}

func (g *Gemini) buildPrompt(req Request) (string, error) {
	instruction, err := g.catalog.Instruction(req.Type)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\nCAMPAIGN:\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.Campaign.Title)
	if req.Campaign.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", req.Campaign.Description)
	}
	if req.Campaign.TargetAudience != "" {
		fmt.Fprintf(&b, "- Target audience: %s\n", req.Campaign.TargetAudience)
	}
	if len(req.Attachments) > 0 {
		names := make([]string, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			names = append(names, a.Name)
		}
		fmt.Fprintf(&b, "- Attached assets: %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\nREQUEST:\n")
	b.WriteString(req.Prompt)
	return b.String(), nil
}

// ParseModelResponse extracts the outermost JSON object from a model reply and
// decodes it as content of the requested type.
func ParseModelResponse(req Request, response string) (content.Content, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response: %q", truncate(response, 200))
	}

	c, err := content.Decode(req.Type, []byte(response[start:end+1]))
	if err != nil {
		logger.Get("generator").WithError(err).WithField("type", req.Type).Warn("Model response rejected")
		return nil, err
	}
	return c, nil
}

func inlineMIME(m string) bool {
	return strings.HasPrefix(m, "image/") || strings.HasPrefix(m, "video/") || m == "application/pdf"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
