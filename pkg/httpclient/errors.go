package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// apiErrorBody is the {"error":{"message":...}} shape used by hosted APIs
// such as Cloudinary.
type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response from
// upstream and converts it to an AppError. 404 maps to NotFound; every other
// status is an upstream failure carrying the upstream message.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(upstream+" request failed",
			fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err))
	}

	message := string(raw)
	var body apiErrorBody
	if json.Unmarshal(raw, &body) == nil && body.Error != nil {
		message = body.Error.Message
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFound(upstream+" resource", message)
	}
	return apperrors.Upstream(upstream+" request failed",
		fmt.Errorf("status %d: %s", resp.StatusCode, message))
}
