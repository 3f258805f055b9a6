package estimator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/greenscanner/backend/internal/domain"
)

// maxUnwrapDepth bounds how many string or wrapper layers are peeled off
const maxUnwrapDepth = 4

// ParseStructured finds the JSON object a model returned. It accepts a
// pre-decoded object, a text part holding the object (optionally inside a
// markdown fence), a JSON string that itself holds the object, or a
// responses-style wrapper exposing output_text or output[0].content[].
func ParseStructured(out *Output) (gjson.Result, error) {
	if out == nil {
		return gjson.Result{}, fmt.Errorf("%w: empty output", domain.ErrMalformedOutput)
	}
	if out.Object != nil {
		raw, err := json.Marshal(out.Object)
		if err == nil {
			return gjson.ParseBytes(raw), nil
		}
	}
	for _, text := range out.Texts {
		if payload, ok := unwrap(text, 0); ok {
			return payload, nil
		}
	}
	return gjson.Result{}, fmt.Errorf("%w: no JSON object in model output", domain.ErrMalformedOutput)
}

func unwrap(text string, depth int) (gjson.Result, bool) {
	if depth > maxUnwrapDepth {
		return gjson.Result{}, false
	}
	text = stripCodeFence(text)
	if !gjson.Valid(text) {
		return gjson.Result{}, false
	}

	r := gjson.Parse(text)
	switch {
	case r.Type == gjson.String:
		return unwrap(r.Str, depth+1)
	case !r.IsObject():
		return gjson.Result{}, false
	}

	if ot := r.Get("output_text"); ot.Type == gjson.String && ot.Str != "" {
		if payload, ok := unwrap(ot.Str, depth+1); ok {
			return payload, true
		}
	}
	if content := r.Get("output.0.content"); content.IsArray() {
		var found gjson.Result
		ok := false
		content.ForEach(func(_, item gjson.Result) bool {
			if js := item.Get("json"); js.IsObject() {
				found, ok = js, true
				return false
			}
			if t := item.Get("text"); t.Type == gjson.String && t.Str != "" {
				found, ok = unwrap(t.Str, depth+1)
				return !ok
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	if r.Get("output_text").Exists() || r.Get("output").Exists() {
		return gjson.Result{}, false
	}
	return r, true
}

// stripCodeFence removes a surrounding ```json ... ``` block
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// stringField returns a string property or "" for any other shape
func stringField(r gjson.Result, key string) string {
	v := r.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
