/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm/retry"
)

// Interface is the executor contract stages program against. Tests and the
// deterministic judge stub implement it directly.
type Interface[Response any] interface {
	// Execute runs one model conversation: the prompt goes out, tool calls
	// are dispatched to their handlers, and the final text is parsed into
	// Response.
	Execute(ctx context.Context, prompt string, tools []Tool) (Response, error)
}

// executor is the Anthropic implementation.
type executor[Response any] struct {
	client      anthropic.Client
	modelName   string
	system      string
	maxTokens   int64
	temperature float64
	retryConfig retry.Config
}

// Option configures an executor.
type Option[Response any] func(*executor[Response]) error

// WithModel overrides the model identifier.
func WithModel[Response any](model string) Option[Response] {
	return func(e *executor[Response]) error {
		if model == "" {
			return errors.New("model cannot be empty")
		}
		e.modelName = model
		return nil
	}
}

// WithMaxTokens caps the response size.
func WithMaxTokens[Response any](tokens int64) Option[Response] {
	return func(e *executor[Response]) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		e.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets sampling randomness, 0.0 to 1.0.
func WithTemperature[Response any](temp float64) Option[Response] {
	return func(e *executor[Response]) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithRetryConfig overrides the transient-error retry policy.
func WithRetryConfig[Response any](cfg retry.Config) Option[Response] {
	return func(e *executor[Response]) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}

// New constructs an executor with the given system instructions.
func New[Response any](client anthropic.Client, system string, opts ...Option[Response]) (Interface[Response], error) {
	e := &executor[Response]{
		client:      client,
		modelName:   "claude-sonnet-4-5",
		system:      system,
		maxTokens:   8192,
		temperature: 0.1,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return e, nil
}

// Execute implements Interface.
func (e *executor[Response]) Execute(ctx context.Context, prompt string, tools []Tool) (Response, error) {
	var response Response
	log := clog.FromContext(ctx)

	byName := make(map[string]Tool, len(tools))
	toolDefs := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
		def := t.definition()
		toolDefs = append(toolDefs, anthropic.ToolUnionParam{OfTool: &def})
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(e.modelName),
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(e.temperature),
		Tools:       toolDefs,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
	}
	if e.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: e.system}}
	}

	log.With("model", e.modelName).With("prompt_length", len(prompt)).
		Debug("Starting model conversation")

	for {
		message, err := retry.Do(ctx, e.retryConfig, "messages.new", isRetryableAnthropicError, func() (anthropic.Message, error) {
			stream := e.client.Messages.NewStreaming(ctx, params)
			var msg anthropic.Message
			for stream.Next() {
				if err := msg.Accumulate(stream.Current()); err != nil {
					return msg, fmt.Errorf("accumulating event: %w", err)
				}
			}
			if err := stream.Err(); err != nil {
				return msg, err
			}
			return msg, nil
		})
		if err != nil {
			return response, classifyAnthropicError("llm.Execute", err)
		}

		var toolUses []anthropic.ToolUseBlock
		var text string
		for _, content := range message.Content {
			switch content.Type {
			case "text":
				text = content.Text
			case "tool_use":
				toolUses = append(toolUses, anthropic.ToolUseBlock{
					ID: content.ID, Name: content.Name, Input: content.Input,
				})
			}
		}

		if len(toolUses) == 0 {
			if text == "" {
				return response, faults.New(faults.MalformedOutput, "llm.Execute", "no content in model response")
			}
			resp, err := Extract[Response](text)
			if err != nil {
				log.With("error", err).Error("Failed to parse model response")
				return response, err
			}
			return resp, nil
		}

		params.Messages = append(params.Messages, message.ToParam())

		results := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		for _, use := range toolUses {
			log.With("tool", use.Name).With("id", use.ID).Debug("Executing tool call")
			result := e.dispatch(ctx, byName, use)
			payload, err := json.Marshal(result)
			if err != nil {
				return response, fmt.Errorf("marshaling tool result: %w", err)
			}
			results = append(results, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: use.ID,
					Content: []anthropic.ToolResultBlockParamContentUnion{{
						OfText: &anthropic.TextBlockParam{Text: string(payload)},
					}},
				},
			})
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRoleUser,
			Content: results,
		})
	}
}

func (e *executor[Response]) dispatch(ctx context.Context, byName map[string]Tool, use anthropic.ToolUseBlock) map[string]any {
	tool, ok := byName[use.Name]
	if !ok {
		clog.FromContext(ctx).With("tool", use.Name).Warn("Unknown tool requested")
		return ErrorResult("unknown tool: %q", use.Name)
	}
	var args map[string]any
	if len(use.Input) > 0 {
		if err := json.Unmarshal(use.Input, &args); err != nil {
			return ErrorResult("unparseable tool input: %v", err)
		}
	}
	return tool.Handle(ctx, args)
}

// isRetryableAnthropicError reports rate-limit, overloaded, and transient
// server errors.
func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}

func classifyAnthropicError(op string, err error) error {
	if isRetryableAnthropicError(err) {
		return faults.Transient(op, err)
	}
	return faults.Wrap(faults.API, op, err)
}
