package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed order_document.schema.json
var orderDocumentSchemaJSON string

// OrderDocument is the wire shape of one statutory order submitted for
// ingest: its identifying fields plus every numbered article in document
// order.
type OrderDocument struct {
	PayloadVersion string           `json:"payload_version"`
	OrderName      string           `json:"order_name"`
	Year           *int             `json:"order_year,omitempty"`
	SINumber       *int             `json:"order_number,omitempty"`
	Articles       []ArticlePayload `json:"articles"`
}

type ArticlePayload struct {
	Number     string   `json:"number"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateOrderDocument checks a raw payload against the embedded JSON
// schema and a handful of semantic rules the schema cannot express, then
// returns the decoded document.
func ValidateOrderDocument(payload json.RawMessage) (*OrderDocument, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var doc OrderDocument
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("order_document.schema.json", strings.NewReader(orderDocumentSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("order_document.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(doc *OrderDocument) error {
	if doc == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(doc.OrderName) == "" {
		return fmt.Errorf("order_name must not be empty")
	}
	if strings.TrimSpace(doc.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}

	seen := make(map[string]struct{}, len(doc.Articles))
	for i, article := range doc.Articles {
		number := strings.TrimSpace(article.Number)
		if number == "" {
			return fmt.Errorf("articles[%d].number must not be empty", i)
		}
		if _, dup := seen[number]; dup {
			return fmt.Errorf("articles[%d].number %q appears more than once", i, number)
		}
		seen[number] = struct{}{}

		if strings.TrimSpace(article.Title) == "" {
			return fmt.Errorf("articles[%d].title must not be empty", i)
		}
		for j, paragraph := range article.Paragraphs {
			if strings.TrimSpace(paragraph) == "" {
				return fmt.Errorf("articles[%d].paragraphs[%d] must not be empty", i, j)
			}
		}
	}

	return nil
}
