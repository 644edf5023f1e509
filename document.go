package dispatch

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Info is the API metadata block of the generated document. It is server
// configuration, read once when the document is built.
type Info struct {
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Version        string   `yaml:"version"`
	TermsOfService string   `yaml:"terms_of_service"`
	ContactEmail   string   `yaml:"contact_email"`
	LicenseName    string   `yaml:"license_name"`
	LicenseURL     string   `yaml:"license_url"`
	CompanyName    string   `yaml:"company_name"`
	CompanyURL     string   `yaml:"company_url"`
	Host           string   `yaml:"host"`
	BasePath       string   `yaml:"base_path"`
	Schemes        []string `yaml:"schemes"`
	Consumes       []string `yaml:"consumes"`
	Produces       []string `yaml:"produces"`
}

// Document is a Swagger 2.0 description of the registry.
type Document struct {
	Swagger     string                  `json:"swagger" yaml:"swagger"`
	Info        DocumentInfo            `json:"info" yaml:"info"`
	Host        string                  `json:"host" yaml:"host"`
	BasePath    string                  `json:"basePath" yaml:"basePath"`
	Schemes     []string                `json:"schemes" yaml:"schemes"`
	Consumes    []string                `json:"consumes" yaml:"consumes"`
	Produces    []string                `json:"produces" yaml:"produces"`
	Definitions map[string]Schema       `json:"definitions" yaml:"definitions"`
	Paths       map[string]PathItem     `json:"paths" yaml:"paths"`
	Parameters  map[string]ParameterDef `json:"parameters" yaml:"parameters"`
}

// DocumentInfo is the "info" object.
type DocumentInfo struct {
	Title          string  `json:"title" yaml:"title"`
	Description    string  `json:"description" yaml:"description"`
	Version        string  `json:"version" yaml:"version"`
	TermsOfService string  `json:"termsOfService" yaml:"termsOfService"`
	Contact        Contact `json:"contact" yaml:"contact"`
	License        Link    `json:"license" yaml:"license"`
	Company        Link    `json:"company" yaml:"company"`
}

// Contact is the "info.contact" object.
type Contact struct {
	Email string `json:"email" yaml:"email"`
}

// Link is a named URL, used for the license and company objects.
type Link struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// PathItem maps lowercase verbs to operations.
type PathItem map[string]Operation

// Operation describes one verb on one path.
type Operation struct {
	Summary     string              `json:"summary" yaml:"summary"`
	Description string              `json:"description" yaml:"description"`
	OperationID string              `json:"operationId" yaml:"operationId"`
	Parameters  []ParameterRef      `json:"parameters" yaml:"parameters"`
	Tags        []string            `json:"tags" yaml:"tags"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

// ParameterRef is an operation parameter: either a reference into the
// top-level parameters map or the inline body parameter.
type ParameterRef struct {
	Ref         string  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	In          string  `json:"in,omitempty" yaml:"in,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ParameterDef is a shared parameter definition. Enum is omitted when the
// input allows any value.
type ParameterDef struct {
	Name        string   `json:"name" yaml:"name"`
	In          string   `json:"in" yaml:"in"`
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Required    bool     `json:"required" yaml:"required"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Schema is the small subset of JSON Schema the generator emits.
type Schema struct {
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Response describes one possible status of an operation.
type Response struct {
	Description string `json:"description" yaml:"description"`
}

func newDocument(info Info) *Document {
	return &Document{
		Swagger: "2.0",
		Info: DocumentInfo{
			Title:          info.Title,
			Description:    info.Description,
			Version:        info.Version,
			TermsOfService: info.TermsOfService,
			Contact:        Contact{Email: info.ContactEmail},
			License:        Link{Name: info.LicenseName, URL: info.LicenseURL},
			Company:        Link{Name: info.CompanyName, URL: info.CompanyURL},
		},
		Host:        info.Host,
		BasePath:    info.BasePath,
		Schemes:     nonNil(info.Schemes),
		Consumes:    nonNil(info.Consumes),
		Produces:    nonNil(info.Produces),
		Definitions: make(map[string]Schema),
		Paths:       make(map[string]PathItem),
		Parameters:  make(map[string]ParameterDef),
	}
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteYAML writes the document as YAML.
func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
