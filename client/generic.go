package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetAs performs a GET request and decodes the response into T.
func GetAs[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	raw, err := c.Get(ctx, path)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(raw, &out); err != nil {
		return out, c.errors.Normalize(err, "")
	}
	return out, nil
}

// PostAs performs a POST request and decodes the response into T.
func PostAs[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	raw, err := c.Post(ctx, path, body)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(raw, &out); err != nil {
		return out, c.errors.Normalize(err, "")
	}
	return out, nil
}

func decodeJSON(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
