// Package llm provides the optional AI-assisted classifier stage. It is an
// accelerator, not a load-bearing component: the keyword classifier must
// produce identical decisions when this package is disabled.
package llm

import (
	"context"
	"errors"
)

// Client classifies news text. Implementations must treat every failure as
// soft: the caller falls back to the keyword classifier.
type Client interface {
	// ClassifyNews returns a category label for the text, or ErrNoCategory
	// when the model declines to assign one.
	ClassifyNews(ctx context.Context, text, channel string) (string, error)
}

// ErrNoCategory indicates the model produced no usable category.
var ErrNoCategory = errors.New("llm: no category assigned")

// ErrDisabled indicates the client is configured off.
var ErrDisabled = errors.New("llm: client disabled")

type disabledClient struct{}

func (disabledClient) ClassifyNews(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

// NewDisabled returns a no-op client for deployments without an API key.
func NewDisabled() Client {
	return disabledClient{}
}
