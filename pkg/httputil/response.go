package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DecodeJSONResponse decodes a JSON response body into target, closing the
// body. Non-200 responses are an error before any decoding is attempted.
func DecodeJSONResponse(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	if err := EnsureStatusOK(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode json response: %w", err)
	}

	return nil
}

// EnsureStatusOK checks if the response status is 200 OK
func EnsureStatusOK(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}
	return nil
}
