/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewClient builds an Anthropic client authenticated with an API key.
func NewClient(apiKey string) (anthropic.Client, error) {
	if apiKey == "" {
		return anthropic.Client{}, errors.New("anthropic api key cannot be empty")
	}
	return anthropic.NewClient(option.WithAPIKey(apiKey)), nil
}
