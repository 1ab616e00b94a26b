// Package schema compiles a Go argument struct's field tags into a JSON
// Schema (github.com/santhosh-tekuri/jsonschema/v5) and validates decoded
// request payloads against it. Consumed only by internal/command.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Options mirrors the distilled spec's {ignoreUnknownKeys, isLenient} pair.
type Options struct {
	// IgnoreUnknownKeys, when false, compiles the schema with
	// additionalProperties: false so unexpected keys fail validation.
	IgnoreUnknownKeys bool
	// Lenient, when true, lets the final decode into the argument struct
	// accept fields the struct does not declare; when false that decode
	// uses DisallowUnknownFields.
	Lenient bool
}

// Field describes one struct field's schema metadata, parsed from its
// `arg` tag: `arg:"required,desc=Player display name"`.
type Field struct {
	JSONName    string
	GoName      string
	Type        reflect.Type
	Required    bool
	Description string
}

// Compiled holds a struct type's compiled JSON Schema alongside the field
// metadata used to build it, so the dispatcher can decode into a fresh
// value of Type without re-walking reflection per request.
type Compiled struct {
	Type   reflect.Type
	Schema *jsonschema.Schema
	Fields []Field
}

// Compile walks sample's fields (sample must be a struct or pointer to
// struct), builds a JSON Schema document from their `json`/`arg` tags, and
// compiles it. Every field must carry an `arg` tag; this is the
// registration-time enforcement of the "every argument is documented"
// invariant.
func Compile(sample any, opts Options) (*Compiled, error) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: sample must be a struct, got %s", t.Kind())
	}

	fields := make([]Field, 0, t.NumField())
	properties := map[string]any{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		argTag, ok := sf.Tag.Lookup("arg")
		if !ok {
			return nil, fmt.Errorf("schema: field %s has no arg tag", sf.Name)
		}
		f, err := parseField(sf, argTag)
		if err != nil {
			return nil, fmt.Errorf("schema: field %s: %w", sf.Name, err)
		}
		fields = append(fields, f)
		properties[f.JSONName] = jsonTypeOf(f)
		if f.Required {
			required = append(required, f.JSONName)
		}
	}

	doc := map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": opts.IgnoreUnknownKeys,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal generated document: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resourceName = "gameserver-argument-schema.json"
	if err := compiler.AddResource(resourceName, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}

	compiledResult := &Compiled{Type: t, Schema: compiled, Fields: fields}
	if err := compiledResult.checkOptionalFieldsDefaultToZeroValue(opts); err != nil {
		return nil, err
	}
	return compiledResult, nil
}

// checkOptionalFieldsDefaultToZeroValue decodes "{}" through the compiled
// schema and asserts every non-required field lands on its Go zero value —
// the registration-time enforcement of "every optional field has a default
// equal to the zero value" named in the argument invariant.
func (c *Compiled) checkOptionalFieldsDefaultToZeroValue(opts Options) error {
	if err := c.Schema.Validate(map[string]any{}); err != nil {
		// An empty object failing validation only matters if some field is
		// actually required; non-required fields are unaffected either way.
		return nil
	}
	zero, err := c.Validate([]byte("{}"), opts)
	if err != nil {
		return fmt.Errorf("schema: decoding {} against compiled schema: %w", err)
	}
	zeroVal := reflect.ValueOf(zero).Elem()
	for _, f := range c.Fields {
		if f.Required {
			continue
		}
		got := zeroVal.FieldByName(f.GoName)
		if !got.IsZero() {
			return fmt.Errorf("schema: optional field %s does not default to its zero value", f.GoName)
		}
	}
	return nil
}

// Validate decodes data as JSON, validates it against c.Schema, and
// unmarshals it into a fresh *T (a pointer to a zero value of c.Type),
// returned as an any holding that pointer.
func (c *Compiled) Validate(data []byte, opts Options) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := c.Schema.Validate(v); err != nil {
		return nil, fmt.Errorf("schema: validate: %w", err)
	}

	out := reflect.New(c.Type)
	unmarshalDec := json.NewDecoder(bytes.NewReader(data))
	if !opts.Lenient {
		unmarshalDec.DisallowUnknownFields()
	}
	if err := unmarshalDec.Decode(out.Interface()); err != nil {
		return nil, fmt.Errorf("schema: unmarshal: %w", err)
	}
	return out.Interface(), nil
}

func parseField(sf reflect.StructField, argTag string) (Field, error) {
	jsonName := sf.Name
	if jt, ok := sf.Tag.Lookup("json"); ok {
		name := strings.SplitN(jt, ",", 2)[0]
		if name != "" && name != "-" {
			jsonName = name
		}
	}

	f := Field{JSONName: jsonName, GoName: sf.Name, Type: sf.Type}
	for _, part := range strings.Split(argTag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "required":
			f.Required = true
		case strings.HasPrefix(part, "desc="):
			f.Description = strings.TrimPrefix(part, "desc=")
		case part == "":
		default:
			return Field{}, fmt.Errorf("unrecognized arg tag segment %q", part)
		}
	}
	if f.Description == "" {
		return Field{}, fmt.Errorf("arg tag must include desc=...")
	}
	return f, nil
}

func jsonTypeOf(f Field) map[string]any {
	prop := map[string]any{"description": f.Description}
	switch f.Type.Kind() {
	case reflect.String:
		prop["type"] = "string"
	case reflect.Bool:
		prop["type"] = "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		prop["type"] = "integer"
	case reflect.Float32, reflect.Float64:
		prop["type"] = "number"
	case reflect.Slice, reflect.Array:
		prop["type"] = "array"
	case reflect.Map, reflect.Struct:
		prop["type"] = "object"
	default:
		prop["type"] = []string{"string", "number", "boolean", "object", "array", "null"}
	}
	return prop
}
