// Package doclib builds the OpenAPI document for the routes registered through uapi.
package doclib

import (
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type SetupData struct {
	URL             string
	ErrorStruct     any
	Info            Info
	errorStructName string
}

var (
	DocsSetupData *SetupData
	stringType    = openapi3.Types([]string{"string"})
)

var (
	badRequestSchema *openapi3.SchemaRef

	IdSchema     *openapi3.SchemaRef
	StringSchema *openapi3.SchemaRef
	BoolSchema   *openapi3.SchemaRef
)

func Setup() {
	if DocsSetupData == nil {
		panic("DocsSetupData is nil")
	}

	var err error

	badRequestSchema, err = openapi3gen.NewSchemaRefForValue(DocsSetupData.ErrorStruct, nil, SchemaInject(DocsSetupData.ErrorStruct))

	if err != nil {
		panic(err)
	}

	DocsSetupData.errorStructName = schemaName(DocsSetupData.ErrorStruct)

	IdSchema, err = openapi3gen.NewSchemaRefForValue(uint(1), nil)

	if err != nil {
		panic(err)
	}

	StringSchema, err = openapi3gen.NewSchemaRefForValue("", nil)

	if err != nil {
		panic(err)
	}

	BoolSchema, err = openapi3gen.NewSchemaRefForValue(true, nil)

	if err != nil {
		panic(err)
	}

	api = newOpenapi()
	api.Components.Schemas[DocsSetupData.errorStructName] = badRequestSchema
	api.Info = DocsSetupData.Info
	api.Servers[0].URL = DocsSetupData.URL
}

func newOpenapi() Openapi {
	return Openapi{
		OpenAPI: "3.1.0",
		Servers: []Server{
			{
				Description: "Minigram API",
				Variables:   map[string]any{},
			},
		},
		Paths: orderedmap.New[string, Path](),
		Components: Component{
			Schemas:       make(map[string]any),
			Security:      make(map[string]Security),
			RequestBodies: make(map[string]ReqBody),
		},
	}
}

var api = newOpenapi()

func schemaName(v any) string {
	name := reflect.TypeOf(v).String()
	name = strings.TrimPrefix(name, "[]")
	name = strings.TrimPrefix(name, "*")
	if strings.HasPrefix(reflect.TypeOf(v).String(), "[]") {
		name += "List"
	}
	return name
}

func AddTag(name, description string) {
	api.Tags = append(api.Tags, Tag{
		Name:        name,
		Description: description,
	})
}

func AddSecuritySchema(id, header, description string) {
	api.Components.Security[id] = Security{
		Type:        "apiKey",
		Name:        header,
		In:          "header",
		Description: description,
	}
}

func SchemaInject(s any) openapi3gen.Option {
	return openapi3gen.SchemaCustomizer(func(name string, ft reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
		if tag.Get("description") != "" {
			schema.Description = tag.Get("description")
		}

		if tag.Get("msg") != "" && schema.Description == "" {
			schema.Description = tag.Get("msg")
		}

		if tag.Get("validate") != "" {
			for _, val := range strings.Split(tag.Get("validate"), ",") {
				key, arg, _ := strings.Cut(val, "=")
				switch key {
				case "required":
					schema.Nullable = false
				case "max":
					if n, err := strconv.ParseUint(arg, 10, 64); err == nil && ft.Kind() == reflect.String {
						schema.MaxLength = &n
					}
				case "oneof":
					var enum []any

					for _, val := range strings.Split(arg, " ") {
						enum = append(enum, val)
					}

					schema.Enum = enum
				}
			}
		}

		switch ft.String() {
		case "time.Time":
			schema.Type = &stringType
			schema.Format = "date-time"
		case "uuid.UUID":
			schema.Type = &stringType
			schema.Format = "uuid"
		}

		if tag.Get("type") != "" {
			typ := openapi3.Types([]string{tag.Get("type")})
			schema.Type = &typ
		}

		return nil
	})
}

func errorResponse(description string) Response {
	return Response{
		Description: description,
		Content: map[string]SchemaResp{
			"application/json": {
				Schema: Schema{
					Ref: "#/components/schemas/" + DocsSetupData.errorStructName,
				},
			},
		},
	}
}

func Route(doc *Doc) {
	if len(doc.Params) == 0 {
		doc.Params = []Parameter{}
	}

	if len(doc.AuthType) == 0 {
		doc.AuthType = []string{}
	}

	if len(doc.Tags) == 0 {
		panic("no tags set in route: " + doc.Pattern)
	}

	for _, param := range doc.Params {
		if param.In == "" {
			panic("no in set in route: " + doc.Pattern)
		}

		if param.Name == "" {
			panic("no name set in route: " + doc.Pattern)
		}

		if param.Schema == nil {
			panic("no schema set in route: " + doc.Pattern)
		}

		if param.Description == "" {
			panic("no description set in route: " + doc.Pattern)
		}
	}

	if doc.OpId == "" {
		panic("no opId set in route: " + doc.Pattern)
	}

	if doc.Pattern == "" {
		panic("no path set in route: " + doc.OpId)
	}

	status := doc.Status
	if status == 0 {
		status = http.StatusOK
	}

	responses := map[string]Response{
		"400": errorResponse("Bad Request"),
		"404": errorResponse("Not Found"),
	}

	if status == http.StatusNoContent {
		responses["204"] = Response{Description: "No Content"}
	} else {
		if doc.Resp == nil {
			doc.Resp = DocsSetupData.ErrorStruct
		}

		var name string
		if doc.RespName != "" {
			name = doc.RespName
		} else {
			name = schemaName(doc.Resp)
		}

		if name != DocsSetupData.errorStructName {
			if os.Getenv("DEBUG") == "true" {
				fmt.Println(name)
			}

			if _, ok := api.Components.Schemas[name]; !ok {
				schemaRef, err := openapi3gen.NewSchemaRefForValue(doc.Resp, nil, SchemaInject(doc.Resp))

				if err != nil {
					panic(err)
				}

				api.Components.Schemas[name] = schemaRef
			}
		}

		responses[strconv.Itoa(status)] = Response{
			Description: "Success",
			Content: map[string]SchemaResp{
				"application/json": {
					Schema: Schema{
						Ref: "#/components/schemas/" + name,
					},
				},
			},
		}
	}

	if len(doc.AuthType) > 0 {
		responses["401"] = errorResponse("Unauthorized")
		responses["403"] = errorResponse("Forbidden")
	}

	// Add in requests
	var reqBodyRef *Schema
	if doc.Req != nil {
		schemaRef, err := openapi3gen.NewSchemaRefForValue(doc.Req, nil, SchemaInject(doc.Req))

		if err != nil {
			panic(err)
		}

		reqSchemaName := schemaName(doc.Req)

		if os.Getenv("DEBUG") == "true" {
			fmt.Println("REQUEST:", reqSchemaName)
		}

		content := map[string]Content{
			"application/json": {
				Schema: schemaRef,
			},
		}

		if doc.FormReq {
			content["multipart/form-data"] = Content{Schema: schemaRef}
		}

		api.Components.RequestBodies[doc.Method+"_"+reqSchemaName] = ReqBody{
			Required: true,
			Content:  content,
		}

		reqBodyRef = &Schema{Ref: "#/components/requestBodies/" + doc.Method + "_" + reqSchemaName}
	}

	operationData := &Operation{
		Tags:        doc.Tags,
		Summary:     doc.Summary,
		Description: doc.Description,
		ID:          doc.OpId,
		Parameters:  doc.Params,
		Responses:   responses,
		RequestBody: reqBodyRef,
		Security:    []map[string][]string{},
	}

	for _, auth := range doc.AuthType {
		operationData.Security = append(operationData.Security, map[string][]string{
			auth: {},
		})
	}

	op, _ := api.Paths.Get(doc.Pattern)

	switch strings.ToLower(doc.Method) {
	case "head":
		op.Head = operationData
	case "get":
		op.Get = operationData
	case "post":
		op.Post = operationData
	case "put":
		op.Put = operationData
	case "patch":
		op.Patch = operationData
	case "delete":
		op.Delete = operationData
	default:
		panic("unknown method: " + doc.Method)
	}

	api.Paths.Set(doc.Pattern, op)
}

func GetSchema() Openapi {
	return api
}
