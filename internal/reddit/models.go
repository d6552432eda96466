package reddit

import (
	"fmt"
	"io"
	"strings"
)

// Image is an image file to be uploaded with a submission.
type Image struct {
	Filename string
	MIMEType string
	Body     io.Reader
}

// submitResponse is the api_type=json envelope returned by /api/submit.
type submitResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

type mediaAssetResponse struct {
	Args struct {
		Action string       `json:"action"`
		Fields []leaseField `json:"fields"`
	} `json:"args"`
	Asset struct {
		AssetID string `json:"asset_id"`
	} `json:"asset"`
}

type leaseField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type flairTemplate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// APIError is a single entry of the json.errors envelope.
type APIError struct {
	Code    string
	Message string
	Field   string
}

func (e APIError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: '%s'", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: '%s' on field '%s'", e.Code, e.Message, e.Field)
}

// APIErrors is the full list of errors reported for one request.
type APIErrors []APIError

func (e APIErrors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

func parseAPIErrors(raw [][]any) APIErrors {
	if len(raw) == 0 {
		return nil
	}
	errs := make(APIErrors, 0, len(raw))
	for _, entry := range raw {
		var e APIError
		if len(entry) > 0 {
			e.Code = fmt.Sprint(entry[0])
		}
		if len(entry) > 1 {
			e.Message = fmt.Sprint(entry[1])
		}
		if len(entry) > 2 && entry[2] != nil {
			e.Field = fmt.Sprint(entry[2])
		}
		errs = append(errs, e)
	}
	return errs
}

// StatusError is returned for non-2xx responses. Message carries the
// response body as sent by the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("received %d HTTP response", e.StatusCode)
	}
	return fmt.Sprintf("received %d HTTP response: %s", e.StatusCode, e.Message)
}
