package dispatch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// SwaggerName is the registry name of the documentation action.
const SwaggerName = "swagger"

// swaggerError is the payload served when documentation is disabled.
var swaggerError = map[string]string{"error": "Invalid request"}

// bodyParameter is appended to every POST, PUT and PATCH operation.
func bodyParameter() ParameterRef {
	return ParameterRef{
		Name:        "body",
		In:          InBody,
		Description: "Body of the action",
		Schema:      &Schema{Type: "object"},
	}
}

type swaggerConfig struct {
	disabled bool
	scoped   bool
	template string
	logger   *slog.Logger
}

// SwaggerOption configures document generation and the swagger action.
type SwaggerOption func(*swaggerConfig)

// WithDisabled turns documentation off. The action then answers every
// request with {"error":"Invalid request"}.
func WithDisabled() SwaggerOption {
	return func(c *swaggerConfig) {
		c.disabled = true
	}
}

// WithScopedParameterKeys includes the verb and path template in each
// parameter key. By default keys are built from the action name, API
// version and parameter name only, so two routes of one action that share a
// parameter name share (and overwrite) a single definition.
func WithScopedParameterKeys() SwaggerOption {
	return func(c *swaggerConfig) {
		c.scoped = true
	}
}

// WithSwaggerRoute changes the route the swagger action answers on.
func WithSwaggerRoute(template string) SwaggerOption {
	return func(c *swaggerConfig) {
		c.template = template
	}
}

// WithSwaggerLogger sets the logger used while building the document.
func WithSwaggerLogger(l *slog.Logger) SwaggerOption {
	return func(c *swaggerConfig) {
		c.logger = l
	}
}

func newSwaggerConfig(opts []SwaggerOption) swaggerConfig {
	c := swaggerConfig{
		template: "/swagger",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// paramKey names a shared parameter definition.
func (c swaggerConfig) paramKey(action, version string, p Path, param string) string {
	if !c.scoped {
		return "action_" + action + version + "_" + param
	}
	scope := strings.NewReplacer("/", "_", ":", "").Replace(strings.Trim(p.Template, "/"))
	return "action_" + action + version + "_" + p.Method.Lower() + "_" + scope + "_" + param
}

// BuildDocument describes every visible route in reg. It is a pure function
// of the registry and info and may be called again after more routes are
// registered.
//
// Actions are visited in registration order; for each one the generator
// sweeps every method's route table and keeps the routes the action owns.
func BuildDocument(reg *Registry, info Info, opts ...SwaggerOption) *Document {
	cfg := newSwaggerConfig(opts)
	doc := newDocument(info)

	for _, a := range reg.Actions() {
		name := a.Name()
		docs := normalizeDocs(docsOf(a))

		for _, m := range Methods() {
			for _, route := range reg.Routes(m) {
				if route.Visibility == Hide || route.Action != name {
					continue
				}
				doc.addOperation(cfg, name, info.Version, route.Path, docs)
			}
		}
	}

	cfg.logger.Debug("swagger document built",
		"paths", len(doc.Paths),
		"parameters", len(doc.Parameters),
	)
	return doc
}

func (d *Document) addOperation(cfg swaggerConfig, action, version string, p Path, docs Docs) {
	params := []ParameterRef{}
	props := make(map[string]Schema)

	for _, in := range docs.Inputs[p] {
		if in.Visibility == Hide {
			continue
		}

		key := cfg.paramKey(action, version, p, in.Name)
		d.Parameters[key] = ParameterDef{
			Name:        in.Name,
			In:          in.In,
			Type:        in.Type,
			Description: in.Description,
			Required:    in.Required,
			Enum:        slices.Clone(in.Values),
		}
		params = append(params, ParameterRef{Ref: "#/parameters/" + key})
		props[in.Name] = Schema{Type: "string"}
	}

	d.Definitions[action+version] = Schema{Type: "object", Properties: props}

	if p.Method.hasBody() {
		params = append(params, bodyParameter())
	}

	path := displayPath(p.Template)
	item, ok := d.Paths[path]
	if !ok {
		item = make(PathItem)
		d.Paths[path] = item
	}

	responses := make(map[string]Response)
	for code, desc := range docs.Responses[p] {
		responses[strconv.Itoa(code)] = Response{Description: desc}
	}

	tags := slices.Clone(docs.Tags[p])
	if tags == nil {
		tags = []string{}
	}

	item[p.Method.Lower()] = Operation{
		Summary:     docs.Summaries[p],
		Description: docs.Descriptions[p],
		OperationID: path,
		Parameters:  params,
		Tags:        tags,
		Responses:   responses,
	}
}

// normalizeDocs re-keys every map so templates start with a slash. When both
// "/x" and "x" are present the slashed key wins.
func normalizeDocs(d Docs) Docs {
	return Docs{
		Summaries:    normalizeKeys(d.Summaries),
		Descriptions: normalizeKeys(d.Descriptions),
		Tags:         normalizeKeys(d.Tags),
		Inputs:       normalizeKeys(d.Inputs),
		Responses:    normalizeKeys(d.Responses),
	}
}

func normalizeKeys[V any](in map[Path]V) map[Path]V {
	out := make(map[Path]V, len(in))
	for p, v := range in {
		if strings.HasPrefix(p.Template, "/") {
			out[p] = v
		}
	}
	for p, v := range in {
		n := p.normalized()
		if _, ok := out[n]; !ok {
			out[n] = v
		}
	}
	return out
}

// Swagger is the documentation action. It snapshots the registry once, when
// it is created; routes registered afterwards are not described.
type Swagger struct {
	route   Path
	enabled bool
	doc     *Document
	body    []byte
}

// NewSwagger builds the documentation snapshot for reg.
func NewSwagger(reg *Registry, info Info, opts ...SwaggerOption) *Swagger {
	cfg := newSwaggerConfig(opts)
	s := &Swagger{
		route:   NewPath(MethodGet, cfg.template),
		enabled: !cfg.disabled,
	}
	if !s.enabled {
		return s
	}

	s.doc = BuildDocument(reg, info, opts...)
	body, err := json.Marshal(s.doc)
	if err != nil {
		cfg.logger.Error("swagger document encoding failed", "err", err)
		s.enabled = false
		s.doc = nil
		return s
	}
	s.body = body
	return s
}

// Name implements Action.
func (s *Swagger) Name() string { return SwaggerName }

// Routes implements RouteProvider.
func (s *Swagger) Routes() []Path { return []Path{s.route} }

// Enabled reports whether a document was generated.
func (s *Swagger) Enabled() bool { return s.enabled }

// Document returns the snapshot, or nil when documentation is disabled.
func (s *Swagger) Document() *Document { return s.doc }

// OnGet serves the snapshot.
func (s *Swagger) OnGet(ex *Exchange) {
	if ex.Answered() {
		return
	}
	if !s.enabled {
		ex.SetError(http.StatusBadRequest, swaggerError)
		return
	}
	ex.SetBody("application/json", s.body)
}
