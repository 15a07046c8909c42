package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// GetList fetches path and decodes the list held under field of the
// response object. A body that is not an object, or whose field is missing
// or null, is a malformed response: callers must not mistake it for an
// empty list.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values, field string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return DecodeList[T](raw, field)
}

// DecodeList decodes the list held under field of an envelope object.
func DecodeList[T any](raw json.RawMessage, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperrors.E(apperrors.KindNetwork, "malformed response: empty body")
	}
	if trimmed[0] != '{' {
		return nil, apperrors.E(apperrors.KindNetwork, fmt.Sprintf("malformed response: expected a %s object", field))
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "malformed response", err)
	}
	var items *[]T
	if value, ok := envelope[field]; ok {
		if err := json.Unmarshal(value, &items); err != nil {
			return nil, apperrors.Wrap(apperrors.KindNetwork, fmt.Sprintf("malformed response: decode %s", field), err)
		}
	}
	if items == nil {
		return nil, apperrors.E(apperrors.KindNetwork, fmt.Sprintf("malformed response: %s field is missing", field))
	}
	if *items == nil {
		return []T{}, nil
	}
	return *items, nil
}
