package receipt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const totalSchema = `{
	"type": "object",
	"required": ["total"],
	"properties": {
		"total": {"type": ["number", "string"]}
	}
}`

var (
	schema   = mustCompile(totalSchema)
	numberRx = regexp.MustCompile(`\d+\.?\d*`)
)

func mustCompile(s string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("total.json", strings.NewReader(s)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("total.json")
}

// ParseTotal extracts the amount from the vision model answer.
// Expects {"total": 12.3}, a plain text answer falls back to its first number
func ParseTotal(answer string) (float64, error) {
	v, isObject := decodeObject(answer)
	if !isObject {
		return fromText(answer)
	}
	if err := schema.Validate(v); err != nil {
		return 0, fmt.Errorf("wrong answer: %w", err)
	}
	switch t := v["total"].(type) {
	case json.Number:
		return t.Float64()
	case string:
		return fromText(t)
	}
	return 0, fmt.Errorf("wrong total type %T", v["total"])
}

func decodeObject(answer string) (map[string]interface{}, bool) {
	d := json.NewDecoder(strings.NewReader(answer))
	d.UseNumber()
	var res map[string]interface{}
	if err := d.Decode(&res); err != nil || res == nil {
		return nil, false
	}
	return res, true
}

func fromText(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := numberRx.FindString(strings.ReplaceAll(s, ",", "")); m != "" {
		return strconv.ParseFloat(m, 64)
	}
	return 0, fmt.Errorf("no amount in '%s'", s)
}
