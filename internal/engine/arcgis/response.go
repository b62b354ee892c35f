package arcgis

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/rendis/subregiones/internal/model"
)

// QueryResponse is the subset of a MapServer query response we use.
type QueryResponse struct {
	Features              []model.Feature
	ExceededTransferLimit bool
}

type rawResponse struct {
	Features              *[]model.Feature `json:"features"`
	ExceededTransferLimit bool             `json:"exceededTransferLimit"`
	Error                 *serviceError    `json:"error"`
}

// serviceError is the error envelope ArcGIS returns with HTTP 200.
type serviceError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// ParseQueryResponse decodes a query body. An error envelope, a missing
// features array or a malformed coordinate is a LoadFailure.
func ParseQueryResponse(body []byte) (*QueryResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &LoadFailure{Op: "decode", Err: err}
	}
	if raw.Error != nil {
		return nil, &LoadFailure{Op: "service", Err: eris.Errorf("code %d: %s", raw.Error.Code, raw.Error.Message)}
	}
	if raw.Features == nil {
		return nil, &LoadFailure{Op: "decode", Err: eris.New("response has no features array")}
	}
	return &QueryResponse{
		Features:              *raw.Features,
		ExceededTransferLimit: raw.ExceededTransferLimit,
	}, nil
}
