// Package openapi builds the OpenAPI 3 document served at /openapi.json.
// Request and response schemas are reflected from the Go types the handlers
// actually encode, so the document cannot drift from the wire format.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Route describes one documented endpoint.
type Route struct {
	Method      string
	Path        string // chi-style path, e.g. /api/v1/guests/{id}
	OperationID string
	Summary     string
	Tag         string

	// Request is a sample of the JSON request body, nil when there is none.
	Request any
	// RequestContentType overrides application/json for non-JSON bodies.
	RequestContentType string

	// Response is a sample of the success body; ResponseContentType
	// overrides application/json (e.g. text/csv, image/png).
	Response            any
	ResponseContentType string
	Status              int

	QueryParams []string

	// Public routes need no organizer credentials.
	Public bool
}

// Generator produces the document from registered routes.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	routes      []Route
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) { g.title = title }
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) { g.version = version }
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) { g.servers = append(g.servers, url) }
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Mingalaroo API",
		version:     "1.0.0",
		description: "Wedding guest list management and public RSVP",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds routes to the document.
func (g *Generator) Register(routes ...Route) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routes = append(g.routes, routes...)
	g.cachedSpec = nil
}

// Generate produces the document. The result is cached until the next Register.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
			SecuritySchemes: openapi3.SecuritySchemes{
				"bearerAuth": &openapi3.SecuritySchemeRef{
					Value: openapi3.NewJWTSecurityScheme(),
				},
				"gatewayUser": &openapi3.SecuritySchemeRef{
					Value: openapi3.NewSecurityScheme().WithType("apiKey").WithIn("header").WithName("X-User-ID"),
				},
			},
		},
	}
	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	for _, route := range g.routes {
		g.addRoute(spec, route)
	}

	g.cachedSpec = spec
	return spec
}

// Handler serves the document as JSON.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI document", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Paths
// =============================================================================

func (g *Generator) addRoute(spec *openapi3.T, route Route) {
	op := &openapi3.Operation{
		OperationID: route.OperationID,
		Summary:     route.Summary,
		Responses:   openapi3.NewResponses(),
	}
	if route.Tag != "" {
		op.Tags = []string{route.Tag}
	}
	if !route.Public {
		op.Security = &openapi3.SecurityRequirements{
			{"bearerAuth": []string{}},
			{"gatewayUser": []string{}},
		}
	}

	for _, name := range pathParams(route.Path) {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()),
		})
	}
	for _, name := range route.QueryParams {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema()),
		})
	}

	if route.Request != nil {
		contentType := route.RequestContentType
		if contentType == "" {
			contentType = "application/json"
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithContent(openapi3.NewContentWithSchemaRef(g.schemaRef(spec, route.Request), []string{contentType})),
		}
	}

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	resp := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if route.Response != nil {
		contentType := route.ResponseContentType
		if contentType == "" {
			contentType = "application/json"
		}
		resp.Content = openapi3.NewContentWithSchemaRef(g.schemaRef(spec, route.Response), []string{contentType})
	}
	op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: resp})
	op.Responses.Set("default", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Error").
			WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/ErrorResponse"}),
	})
	if _, ok := spec.Components.Schemas["ErrorResponse"]; !ok {
		spec.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{Value: openapi3.NewObjectSchema().
			WithProperty("error", openapi3.NewStringSchema()).
			WithProperty("code", openapi3.NewStringSchema())}
	}

	item := spec.Paths.Find(route.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		spec.Paths.Set(route.Path, item)
	}
	item.SetOperation(route.Method, op)
}

func pathParams(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}"))
		}
	}
	return names
}

// =============================================================================
// Schemas
// =============================================================================

var timeType = reflect.TypeOf(time.Time{})

// schemaRef returns a reference to the component schema for sample's type,
// registering it (and any named struct it contains) on first use.
func (g *Generator) schemaRef(spec *openapi3.T, sample any) *openapi3.SchemaRef {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return g.typeSchema(spec, t)
}

func (g *Generator) typeSchema(spec *openapi3.T, t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return openapi3.NewInt32Schema().NewRef()
	case reflect.Int64:
		return openapi3.NewInt64Schema().NewRef()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return openapi3.NewBytesSchema().NewRef()
		}
		return openapi3.NewArraySchema().WithItems(g.typeSchema(spec, t.Elem()).Value).NewRef()
	case reflect.Map:
		return openapi3.NewObjectSchema().WithAdditionalProperties(g.typeSchema(spec, t.Elem()).Value).NewRef()
	case reflect.Ptr:
		ref := g.typeSchema(spec, t.Elem())
		if ref.Ref == "" && ref.Value != nil {
			ref.Value.Nullable = true
		}
		return ref
	case reflect.Struct:
		if t == timeType {
			return openapi3.NewDateTimeSchema().NewRef()
		}
		return g.structSchema(spec, t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

func (g *Generator) structSchema(spec *openapi3.T, t reflect.Type) *openapi3.SchemaRef {
	name := t.Name()
	if existing, ok := spec.Components.Schemas[name]; ok && name != "" {
		return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: existing.Value}
	}

	schema := openapi3.NewObjectSchema()
	if name != "" {
		// Placeholder guards against recursive types.
		spec.Components.Schemas[name] = &openapi3.SchemaRef{Value: schema}
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		fieldName, opts, _ := strings.Cut(tag, ",")
		if fieldName == "" {
			fieldName = field.Name
		}
		schema.Properties[fieldName] = g.typeSchema(spec, field.Type)
		if !strings.Contains(opts, "omitempty") && field.Type.Kind() != reflect.Ptr {
			schema.Required = append(schema.Required, fieldName)
		}
	}

	if name == "" {
		return schema.NewRef()
	}
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: schema}
}
