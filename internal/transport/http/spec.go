package http

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

//go:embed swagger.yaml
var swaggerYAML []byte

// APISpec is the OpenAPI document served by the router
type APISpec struct {
	YAML []byte
	JSON json.RawMessage
	doc  *loads.Document
}

// LoadSpec parses the embedded OpenAPI document and validates it against
// the Swagger 2.0 schema.
func LoadSpec() (*APISpec, error) {
	yamlDoc, err := swag.BytesToYAMLDoc(swaggerYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing swagger.yaml: %w", err)
	}

	jsonDoc, err := swag.YAMLToJSON(yamlDoc)
	if err != nil {
		return nil, fmt.Errorf("converting swagger.yaml to JSON: %w", err)
	}

	doc, err := loads.Analyzed(jsonDoc, "")
	if err != nil {
		return nil, fmt.Errorf("analysing swagger document: %w", err)
	}

	if err := validate.Spec(doc, strfmt.Default); err != nil {
		return nil, fmt.Errorf("invalid swagger document: %w", err)
	}

	return &APISpec{YAML: swaggerYAML, JSON: jsonDoc, doc: doc}, nil
}

// Version of the API as declared in the document info
func (s *APISpec) Version() string {
	return s.doc.Spec().Info.Version
}
