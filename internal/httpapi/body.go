package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var (
	errBodyTooLarge         = errors.New("payload too large")
	errUnsupportedMediaType = errors.New("unsupported content type")
	errInvalidBody          = errors.New("invalid body")
)

const createTodoSchema = `{
  "type": "object",
  "required": ["content"],
  "properties": {
    "content": {"type": "string"}
  }
}`

var createTodoValidator = jsonschema.MustCompileString("create_todo.json", createTodoSchema)

func readBody(r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	lr := io.LimitReader(r.Body, limit+1)

	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body", errInvalidBody)
	}
	if int64(len(b)) > limit {
		return nil, errBodyTooLarge
	}
	return b, nil
}

// decodeContent extracts the "content" field of a create request. htmx posts
// forms url-encoded; JSON is accepted for scripted clients. A missing field is
// an error, an empty one is left to the service to reject.
func decodeContent(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/x-www-form-urlencoded"
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errUnsupportedMediaType
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		body, err := readBody(r, maxBodyBytes)
		if err != nil {
			return "", err
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", fmt.Errorf("%w: malformed form", errInvalidBody)
		}
		return formContent(values)

	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", errBodyTooLarge
			}
			return "", fmt.Errorf("%w: malformed multipart form", errInvalidBody)
		}
		return formContent(url.Values(r.MultipartForm.Value))

	case "application/json":
		body, err := readBody(r, maxBodyBytes)
		if err != nil {
			return "", err
		}
		return jsonContent(body)

	default:
		return "", errUnsupportedMediaType
	}
}

func formContent(values url.Values) (string, error) {
	if !values.Has("content") {
		return "", fmt.Errorf("%w: missing properties: 'content'", errInvalidBody)
	}
	return values.Get("content"), nil
}

func jsonContent(body []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: invalid JSON", errInvalidBody)
	}
	if err := createTodoValidator.Validate(doc); err != nil {
		return "", fmt.Errorf("%w: %s", errInvalidBody, schemaMessage(err))
	}
	// The schema guarantees an object with a string "content".
	return doc.(map[string]any)["content"].(string), nil
}

// schemaMessage returns the first leaf cause of a schema violation.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation != "" {
		return ve.InstanceLocation + ": " + ve.Message
	}
	return ve.Message
}
