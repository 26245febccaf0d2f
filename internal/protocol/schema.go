package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names accepted by ValidateJSON.
const (
	SchemaSubscribe = "subscribe.schema.json"
	SchemaControl   = "control.schema.json"
	SchemaState     = "state.schema.json"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{SchemaSubscribe, SchemaControl, SchemaState}
		for _, n := range names {
			b, err := schemaFS.ReadFile("schemas/" + n)
			if err != nil {
				schemasErr = err
				return
			}
			if err := c.AddResource(n, bytes.NewReader(b)); err != nil {
				schemasErr = fmt.Errorf("schema %s: %w", n, err)
				return
			}
		}
		out := make(map[string]*jsonschema.Schema, len(names))
		for _, n := range names {
			s, err := c.Compile(n)
			if err != nil {
				schemasErr = fmt.Errorf("schema %s: %w", n, err)
				return
			}
			out[n] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// ValidateJSON checks raw JSON against one of the embedded message schemas.
func ValidateJSON(name string, raw []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	s, ok := all[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
