package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/tidwall/gjson"
)

// APIError is a non-2xx response with whatever structure the body carried
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	Path       string
	Message    string
	ErrorText  string
	Fields     []string
	Body       string
}

var _ clierrors.RemoteError = (*APIError)(nil)

func (e *APIError) Error() string {
	msg := clierrors.Describe(e, e.Status)
	return fmt.Sprintf("[%d] %s", e.StatusCode, msg)
}

// HTTPStatus implements errors.RemoteError
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// RemoteMessage implements errors.RemoteError
func (e *APIError) RemoteMessage() string { return e.Message }

// ErrorField implements errors.RemoteError
func (e *APIError) ErrorField() string { return e.ErrorText }

// FieldErrors implements errors.RemoteError
func (e *APIError) FieldErrors() []string { return e.Fields }

// TransportMessage implements errors.RemoteError
func (e *APIError) TransportMessage() string {
	if e.Status == "" {
		return ""
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Status)
}

// ParseError builds an APIError from a failed response
func ParseError(resp *resty.Response) error {
	e := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       string(resp.Body()),
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.Path = resp.Request.URL
	}
	if e.Status == "" {
		e.Status = fmt.Sprintf("%d", e.StatusCode)
	}
	parseBody(e, resp.Body())
	return e
}

func parseBody(e *APIError, body []byte) {
	if !gjson.ValidBytes(body) {
		return
	}
	root := gjson.ParseBytes(body)

	for _, path := range []string{"message", "data.message", "error.message"} {
		if v := root.Get(path); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			e.Message = v.Str
			break
		}
	}
	for _, path := range []string{"error", "data.error", "error.code"} {
		if v := root.Get(path); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			e.ErrorText = v.Str
			break
		}
	}
	for _, path := range []string{"errors", "data.errors", "error.details"} {
		if v := root.Get(path); v.Exists() {
			e.Fields = fieldMessages(v)
			if len(e.Fields) > 0 {
				break
			}
		}
	}
}

// fieldMessages flattens the shapes validation errors arrive in:
// ["msg"], [{"field":"x","message":"msg"}], {"x":"msg"} and {"x":["msg"]}.
// Arrays keep server order; objects are ordered by field name.
func fieldMessages(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			if msg := messageOf(item); msg != "" {
				out = append(out, msg)
			}
			return true
		})
	case v.IsObject():
		var keys []string
		byKey := map[string][]string{}
		v.ForEach(func(key, item gjson.Result) bool {
			keys = append(keys, key.String())
			if item.IsArray() {
				item.ForEach(func(_, inner gjson.Result) bool {
					if msg := messageOf(inner); msg != "" {
						byKey[key.String()] = append(byKey[key.String()], msg)
					}
					return true
				})
			} else if msg := messageOf(item); msg != "" {
				byKey[key.String()] = append(byKey[key.String()], msg)
			}
			return true
		})
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, byKey[k]...)
		}
	case v.Type == gjson.String && v.Str != "":
		out = append(out, v.Str)
	}
	return out
}

func messageOf(item gjson.Result) string {
	if item.Type == gjson.String {
		return strings.TrimSpace(item.Str)
	}
	if item.IsObject() {
		for _, k := range []string{"message", "msg", "error"} {
			if s := item.Get(k); s.Type == gjson.String && strings.TrimSpace(s.Str) != "" {
				return s.Str
			}
		}
	}
	return ""
}

// CheckResponse converts transport failures and non-2xx responses to errors
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return clierrors.CategorizeError(err)
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}
