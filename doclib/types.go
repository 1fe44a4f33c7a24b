package doclib

import (
	"github.com/getkin/kin-openapi/openapi3"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Openapi is the root document served at /openapi
type Openapi struct {
	OpenAPI    string                               `json:"openapi"`
	Info       Info                                 `json:"info"`
	Servers    []Server                             `json:"servers"`
	Tags       []Tag                                `json:"tags,omitempty"`
	Paths      *orderedmap.OrderedMap[string, Path] `json:"paths"`
	Components Component                            `json:"components"`
}

type Info struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	TermsOfService string  `json:"termsOfService,omitempty"`
	Version        string  `json:"version"`
	Contact        Contact `json:"contact"`
	License        License `json:"license"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Server struct {
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Component struct {
	Schemas       map[string]any      `json:"schemas"`
	Security      map[string]Security `json:"securitySchemes"`
	RequestBodies map[string]ReqBody  `json:"requestBodies"`
}

type Security struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
}

type ReqBody struct {
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required"`
	Content     map[string]Content `json:"content"`
}

type Content struct {
	Schema *openapi3.SchemaRef `json:"schema"`
}

type Path struct {
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Get         *Operation `json:"get,omitempty"`
	Post        *Operation `json:"post,omitempty"`
	Put         *Operation `json:"put,omitempty"`
	Patch       *Operation `json:"patch,omitempty"`
	Delete      *Operation `json:"delete,omitempty"`
	Head        *Operation `json:"head,omitempty"`
}

type Operation struct {
	Tags        []string              `json:"tags,omitempty"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	ID          string                `json:"operationId"`
	Parameters  []Parameter           `json:"parameters"`
	RequestBody *Schema               `json:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"`
	Security    []map[string][]string `json:"security"`
}

type Parameter struct {
	Name        string              `json:"name"`
	In          string              `json:"in"`
	Description string              `json:"description"`
	Required    bool                `json:"required"`
	Schema      *openapi3.SchemaRef `json:"schema"`
}

type Response struct {
	Description string                `json:"description"`
	Content     map[string]SchemaResp `json:"content,omitempty"`
}

type SchemaResp struct {
	Schema Schema `json:"schema"`
}

type Schema struct {
	Ref string `json:"$ref"`
}

// Doc describes a single route. Pattern, OpId, Method, Tags and AuthType are
// filled in by uapi when the route is registered.
type Doc struct {
	Summary     string
	Description string
	Params      []Parameter
	Req         any
	// FormReq also documents Req as a multipart/form-data body.
	FormReq  bool
	Resp     any
	RespName string
	// Status of the success response, 200 if unset.
	Status int

	Pattern  string
	OpId     string
	Method   string
	Tags     []string
	AuthType []string
}

// PathID documents a numeric path parameter.
func PathID(name, description string) Parameter {
	return Parameter{
		Name:        name,
		In:          "path",
		Description: description,
		Required:    true,
		Schema:      IdSchema,
	}
}

func QueryString(name, description string, required bool) Parameter {
	return Parameter{
		Name:        name,
		In:          "query",
		Description: description,
		Required:    required,
		Schema:      StringSchema,
	}
}
