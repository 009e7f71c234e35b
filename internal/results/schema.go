package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

const (
	accessKeyPattern = `^\d{44}$`
	numberPattern    = `^([1-9]\d*)?$`
	taxIDPattern     = `^(\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}|\d{3}\.\d{3}\.\d{3}-\d{2})$`
)

// BuildRecordsJSONSchema returns the JSON-Schema of job's output file: an array of
// records whose fields are either canonical values or null.
func BuildRecordsJSONSchema(job constants.Job) map[string]any {
	var props map[string]any
	switch job {
	case constants.JobAccessKey:
		props = map[string]any{
			"access_key": nullable("string", map[string]any{"pattern": accessKeyPattern}),
		}
	case constants.JobNatureza:
		props = map[string]any{
			"natureza_operacao": nullable("string", map[string]any{"minLength": 1}),
		}
	case constants.JobNumeroSerie:
		props = map[string]any{
			"number": nullable("string", map[string]any{"pattern": numberPattern}),
			"serie":  nullable("integer", map[string]any{"minimum": 0, "maximum": 999}),
		}
	case constants.JobRemetente:
		props = map[string]any{
			"cpf_or_cnpj":  nullable("string", map[string]any{"pattern": taxIDPattern}),
			"razao_social": nullable("string", map[string]any{"minLength": 1}),
		}
	default:
		props = map[string]any{}
	}
	props["file"] = map[string]any{"type": "string", "minLength": 1}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             Columns(job),
		},
	}
}

func nullable(typ string, constraints map[string]any) map[string]any {
	prop := map[string]any{"type": []string{typ, "null"}}
	for k, v := range constraints {
		prop[k] = v
	}
	return prop
}

var compiled sync.Map // constants.Job -> *jsonschema.Schema

// ValidateRecords checks the serialized records of job against BuildRecordsJSONSchema.
func ValidateRecords(job constants.Job, data []byte) error {
	schema, err := recordsSchema(job)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return common.NewAppError("INVALID_RECORDS", string(job), fmt.Errorf("%w: unmarshal data: %w", common.ErrValidation, err))
	}
	if err := schema.Validate(v); err != nil {
		return common.NewAppError("INVALID_RECORDS", string(job), fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	return nil
}

func recordsSchema(job constants.Job) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(job); ok {
		return s.(*jsonschema.Schema), nil
	}
	s, err := compileSchema(string(job)+".schema.json", BuildRecordsJSONSchema(job))
	if err != nil {
		return nil, err
	}
	compiled.Store(job, s)
	return s, nil
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
