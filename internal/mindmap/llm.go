package mindmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/llm"
)

// ErrInvalidMindmap means the model answered with something other than
// Mermaid mindmap source.
var ErrInvalidMindmap = errors.New("mindmap: model did not return mindmap syntax")

const llmTemperature = 0.3

const systemPrompt = `You are an expert at converting conversations into Mermaid mindmap diagrams optimized for dyslexic readers.
Your task is to analyze the provided conversation and generate a valid Mermaid mindmap syntax that visualizes the key topics, questions, and answers discussed.

IMPORTANT: This mindmap will be read by people with dyslexia. Use these guidelines:
- Keep labels SHORT and simple (max 4-5 words per node)
- Use clear, common vocabulary (avoid jargon)
- Organize hierarchically with clear parent-child relationships
- Limit to 3-4 main branches maximum
- Keep nesting shallow (max 3 levels deep)
- Use descriptive, concrete words rather than abstract concepts

Rules for generating Mermaid mindmap:
1. Start with: mindmap
2. Root node: root((Main Topic))
3. Create 3-4 main topic branches as direct children of root
4. Under each main topic, add 2-3 key points/subtopics
5. Use quotes around text that contains special characters or spaces
6. Each line represents a node; indentation (2 spaces per level) determines hierarchy
7. Keep labels SHORT and memorable
8. Avoid special characters like #, @, &, etc. in node names unless quoted
9. Focus on the most important concepts - less is more!
10. Return ONLY the Mermaid mindmap code, nothing else

Example format (DYSLEXIA-FRIENDLY):
mindmap
  root((Apache Kafka))
    What It Does
      Handles Data Streams
      Real-Time Processing
    Why Use It
      Reliable Messaging
      Decouples Services
    How It Works
      Topics Store Data
      Consumers Read Messages

Generate the mindmap for this conversation:
`

// LLMGenerator asks a language model to draw the mindmap.
type LLMGenerator struct {
	completer llm.Completer
}

// NewLLMGenerator creates an LLMGenerator.
func NewLLMGenerator(completer llm.Completer) *LLMGenerator {
	return &LLMGenerator{completer: completer}
}

// Generate returns the model's mindmap for messages. The answer must start
// with the mindmap keyword.
func (g *LLMGenerator) Generate(ctx context.Context, messages []*domain.Message) (string, error) {
	if len(messages) == 0 {
		return EmptyMindmap, nil
	}

	turns := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}

	out, err := g.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt + llm.Transcript(turns)},
			{Role: llm.RoleUser, Content: "Generate the Mermaid mindmap for the conversation above."},
		},
		Temperature: llmTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate mindmap: %w", err)
	}

	out = strings.TrimSpace(stripFence(out))
	if !strings.HasPrefix(strings.ToLower(out), "mindmap") {
		return "", ErrInvalidMindmap
	}
	return out, nil
}

// stripFence unwraps a ```mermaid fenced block.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
