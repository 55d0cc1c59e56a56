package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type obj = map[string]any

// responses every operation may produce, added where an operation does not describe its own
var defaultResponses = []struct {
	status  int
	code    int
	message string
}{
	{http.StatusBadRequest, 5, "mode must be highlight or redact"},
	{http.StatusInternalServerError, 1, "panic recovered"},
}

// document decorates raw for swagger ui: OAS 3.0.3, a server entry, the error envelope
// schema and the shared error responses
func document(raw []byte, server, titleSuffix string) ([]byte, error) {
	var doc obj
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	// swagger ui does not render 3.1
	delete(doc, "swagger")
	if v, _ := doc["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		doc["openapi"] = "3.0.3"
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{obj{"url": server}}
	}
	if info, ok := doc["info"].(obj); ok && titleSuffix != "" {
		info["title"] = strings.TrimSpace(stringOf(info["title"]) + " " + titleSuffix)
	}

	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = obj{
			"type": "object",
			"properties": obj{
				"status_code": obj{"type": "integer"},
				"status":      obj{"type": "string"},
				"code":        obj{"type": "integer"},
				"error":       obj{"type": "string"},
				"request_id":  obj{"type": "string"},
			},
			"required": []any{"status_code", "status"},
		}
	}

	paths, _ := doc["paths"].(obj)
	for _, p := range paths {
		item, _ := p.(obj)
		for _, op := range item {
			op, ok := op.(obj)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for _, d := range defaultResponses {
				key := strconv.Itoa(d.status)
				if _, ok := resps[key]; ok {
					continue
				}
				resps[key] = errorResponse(d.status, d.code, d.message)
			}
		}
	}
	return json.Marshal(doc)
}

func errorResponse(status, code int, msg string) obj {
	return obj{
		"description": http.StatusText(status),
		"content": obj{"application/json": obj{
			"schema": obj{"$ref": "#/components/schemas/ErrorResponse"},
			"example": obj{
				"status_code": status,
				"status":      http.StatusText(status),
				"code":        code,
				"error":       msg,
			},
		}},
	}
}

// child returns m[key] as an object, creating it when missing
func child(m obj, key string) obj {
	c, ok := m[key].(obj)
	if !ok {
		c = obj{}
		m[key] = c
	}
	return c
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
