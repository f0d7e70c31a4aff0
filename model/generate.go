//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-docstudio-go/telemetry/metric"
)

// ErrNoResponse is returned when a stream closes without producing anything.
var ErrNoResponse = errors.New("model returned no response")

// contextHeader separates a prompt from the document text it applies to.
const contextHeader = "\n\nText content:\n"

// APIError is a failure reported by the model service in Response.Error.
type APIError struct {
	Model   string
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model %s: %s: %s", e.Model, e.Type, e.Message)
}

// DeltaFunc observes streamed output. text is everything received so far
// and delta the newest fragment.
type DeltaFunc func(text, delta string)

// Generate runs req on m and collects the answer. onDelta, when set, is
// called synchronously for every partial response in arrival order.
func Generate(ctx context.Context, m Model, req *Request, onDelta DeltaFunc) (text string, err error) {
	info := m.Info()
	start := time.Now()
	defer func() {
		metric.RecordModelRequest(ctx, info.Provider, info.Name, time.Since(start), err)
	}()

	ch, err := m.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}

	var (
		sb       strings.Builder
		received bool
	)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case rsp, ok := <-ch:
			if !ok {
				if !received {
					return "", ErrNoResponse
				}
				return sb.String(), nil
			}
			received = true
			if rsp.Error != nil {
				return "", &APIError{
					Model:   info.Name,
					Type:    rsp.Error.Type,
					Message: rsp.Error.Message,
				}
			}
			if rsp.IsPartial {
				if delta := rsp.Text(); delta != "" {
					sb.WriteString(delta)
					if onDelta != nil {
						onDelta(sb.String(), delta)
					}
				}
				continue
			}
			if rsp.Done {
				if final := rsp.Text(); final != "" {
					return final, nil
				}
				return sb.String(), nil
			}
		}
	}
}

// PromptWithContext appends document text to a prompt.
func PromptWithContext(prompt, text string) string {
	if text == "" {
		return prompt
	}
	return prompt + contextHeader + text
}
