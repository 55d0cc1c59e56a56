package swaggerkit

import (
	"encoding/json"
	"testing"
)

func decorate(t *testing.T, raw, suffix string) obj {
	t.Helper()
	out, err := document([]byte(raw), "/api/v1", suffix)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	var spec obj
	if err := json.Unmarshal(out, &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return spec
}

func TestDocument_Embedded(t *testing.T) {
	spec := decorate(t, string(openapiDoc), "")

	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 || servers[0].(obj)["url"] != "/api/v1" {
		t.Fatalf("servers = %#v", spec["servers"])
	}
	schemas := spec["components"].(obj)["schemas"].(obj)
	for _, name := range []string{"ErrorResponse", "SingleView"} {
		if _, ok := schemas[name]; !ok {
			t.Fatalf("schema %s missing", name)
		}
	}
	predict := spec["paths"].(obj)["/session/predict"].(obj)["post"].(obj)
	resps := predict["responses"].(obj)
	for _, code := range []string{"200", "400", "409", "500", "502"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("predict missing %s response", code)
		}
	}
}

func TestDocument_VersionAndTitle(t *testing.T) {
	spec := decorate(t, `{"swagger":"2.0","info":{"title":"toxlens"},"paths":{}}`, "staging")
	if spec["openapi"] != "3.0.3" || spec["swagger"] != nil {
		t.Fatalf("swagger 2 not lifted: %#v", spec)
	}
	if spec["info"].(obj)["title"] != "toxlens staging" {
		t.Fatalf("title = %v", spec["info"].(obj)["title"])
	}
	if spec := decorate(t, `{"openapi":"3.1.0"}`, ""); spec["openapi"] != "3.0.3" {
		t.Fatalf("3.1 not downgraded")
	}
}

func TestDocument_KeepsOwnResponses(t *testing.T) {
	spec := decorate(t, `{"openapi":"3.0.3","paths":{"/x":{"get":{"responses":{"400":{"description":"mine"}}}}}}`, "")
	resps := spec["paths"].(obj)["/x"].(obj)["get"].(obj)["responses"].(obj)
	if resps["400"].(obj)["description"] != "mine" || resps["500"] == nil {
		t.Fatalf("responses = %#v", resps)
	}
}

func TestDocument_Broken(t *testing.T) {
	if _, err := document([]byte("{"), "/api/v1", ""); err == nil {
		t.Fatalf("expected decode error")
	}
}
