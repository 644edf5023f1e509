package dispatch_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/dispatchtest"
)

var (
	listUsers  = dispatch.NewPath(dispatch.MethodGet, "/users")
	getUser    = dispatch.NewPath(dispatch.MethodGet, "/users/:id")
	createUser = dispatch.NewPath(dispatch.MethodPost, "/users")
)

// documented is a recording action with documentation.
type documented struct {
	*dispatchtest.Action
	docs dispatch.Docs
}

func (a *documented) Docs() dispatch.Docs { return a.docs }

func newDocumentedRegistry(t *testing.T) (*dispatch.Registry, *documented) {
	t.Helper()

	a := &documented{
		Action: &dispatchtest.Action{
			ActionName: "users",
			Paths:      []dispatch.Path{listUsers, getUser, createUser},
			Log:        &dispatchtest.Log{},
		},
		docs: dispatch.Docs{
			Summaries: map[dispatch.Path]string{
				listUsers:  "List users",
				createUser: "Create user",
			},
			Descriptions: map[dispatch.Path]string{
				listUsers: "Returns every user.",
			},
			Tags: map[dispatch.Path][]string{
				listUsers: {"users"},
			},
			Inputs: map[dispatch.Path][]dispatch.Input{
				listUsers: {
					dispatch.RequiredInput("role", "Role filter", "admin", "member"),
					dispatch.NewInput("q", dispatch.WithInputDescription("Search")),
					dispatch.NewInput("debug", dispatch.WithInputHidden()),
				},
				getUser:    {dispatch.RequiredInput("id", "User ID")},
				createUser: {dispatch.NewInput("name")},
			},
			Responses: map[dispatch.Path]map[int]string{
				listUsers: {http.StatusOK: "Users", http.StatusForbidden: "Not allowed"},
			},
		},
	}

	reg := dispatch.NewRegistry()
	require.NoError(t, reg.Add(a))
	return reg, a
}

var testInfo = dispatch.Info{
	Title:          "Users",
	Description:    "User service",
	Version:        "1",
	TermsOfService: "https://example.com/terms",
	ContactEmail:   "api@example.com",
	LicenseName:    "MIT",
	LicenseURL:     "https://opensource.org/licenses/MIT",
	CompanyName:    "Example",
	CompanyURL:     "https://example.com",
	Host:           "api.example.com",
	BasePath:       "/v1",
	Schemes:        []string{"https"},
	Consumes:       []string{"application/json"},
	Produces:       []string{"application/json"},
}

func TestBuildDocumentHeader(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, dispatch.DocumentInfo{
		Title:          "Users",
		Description:    "User service",
		Version:        "1",
		TermsOfService: "https://example.com/terms",
		Contact:        dispatch.Contact{Email: "api@example.com"},
		License:        dispatch.Link{Name: "MIT", URL: "https://opensource.org/licenses/MIT"},
		Company:        dispatch.Link{Name: "Example", URL: "https://example.com"},
	}, doc.Info)
	assert.Equal(t, "api.example.com", doc.Host)
	assert.Equal(t, "/v1", doc.BasePath)
	assert.Equal(t, []string{"https"}, doc.Schemes)
	assert.Equal(t, []string{"application/json"}, doc.Consumes)
	assert.Equal(t, []string{"application/json"}, doc.Produces)
}

func TestBuildDocumentOperations(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	require.Len(t, doc.Paths, 2)
	require.Contains(t, doc.Paths, "/users")
	require.Contains(t, doc.Paths, "/users/{id}")

	list := doc.Paths["/users"]["get"]
	assert.Equal(t, "List users", list.Summary)
	assert.Equal(t, "Returns every user.", list.Description)
	assert.Equal(t, "/users", list.OperationID)
	assert.Equal(t, []string{"users"}, list.Tags)
	assert.Equal(t, map[string]dispatch.Response{
		"200": {Description: "Users"},
		"403": {Description: "Not allowed"},
	}, list.Responses)
	assert.Equal(t, []dispatch.ParameterRef{
		{Ref: "#/parameters/action_users1_role"},
		{Ref: "#/parameters/action_users1_q"},
	}, list.Parameters, "hidden inputs are omitted and GET has no body")

	get := doc.Paths["/users/{id}"]["get"]
	assert.Equal(t, "/users/{id}", get.OperationID)
	assert.Empty(t, get.Summary)
	assert.Equal(t, []string{}, get.Tags)

	create := doc.Paths["/users"]["post"]
	require.Len(t, create.Parameters, 2)
	assert.Equal(t, dispatch.ParameterRef{Ref: "#/parameters/action_users1_name"}, create.Parameters[0])
	assert.Equal(t, dispatch.ParameterRef{
		Name:        "body",
		In:          dispatch.InBody,
		Description: "Body of the action",
		Schema:      &dispatch.Schema{Type: "object"},
	}, create.Parameters[1])
}

func TestBuildDocumentBodyParameterByVerb(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		method   dispatch.Method
		wantBody bool
	}{
		"GET":     {method: dispatch.MethodGet},
		"POST":    {method: dispatch.MethodPost, wantBody: true},
		"PUT":     {method: dispatch.MethodPut, wantBody: true},
		"PATCH":   {method: dispatch.MethodPatch, wantBody: true},
		"DELETE":  {method: dispatch.MethodDelete},
		"HEAD":    {method: dispatch.MethodHead},
		"OPTIONS": {method: dispatch.MethodOptions},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			reg := dispatch.NewRegistry()
			a := dispatch.NewSimpleAction("thing", nil, dispatch.WithRoutes(dispatch.NewPath(tc.method, "/thing")))
			require.NoError(t, reg.Add(a))

			op := dispatch.BuildDocument(reg, dispatch.Info{}).Paths["/thing"][tc.method.Lower()]
			if !tc.wantBody {
				assert.Empty(t, op.Parameters)
				return
			}
			require.Len(t, op.Parameters, 1)
			assert.Equal(t, "body", op.Parameters[0].Name)
		})
	}
}

func TestBuildDocumentParameters(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	assert.Equal(t, dispatch.ParameterDef{
		Name:        "role",
		In:          dispatch.InQuery,
		Type:        "string",
		Description: "Role filter",
		Required:    true,
		Enum:        []string{"admin", "member"},
	}, doc.Parameters["action_users1_role"])
	assert.NotContains(t, doc.Parameters, "action_users1_debug")

	raw, err := json.Marshal(doc.Parameters["action_users1_q"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"q","in":"query","type":"string","description":"Search","required":false}`, string(raw))
}

func TestBuildDocumentDefinitions(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	doc := dispatch.BuildDocument(reg, testInfo)

	require.Len(t, doc.Definitions, 1)
	assert.Equal(t, dispatch.Schema{
		Type:       "object",
		Properties: map[string]dispatch.Schema{"name": {Type: "string"}},
	}, doc.Definitions["users1"], "the last route swept wins")
}

func TestBuildDocumentParameterKeys(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	byID := dispatch.NewPath(dispatch.MethodGet, "/users/:id")
	byIDPosts := dispatch.NewPath(dispatch.MethodGet, "/users/:id/posts")
	a := dispatch.NewSimpleAction("users", nil,
		dispatch.WithRoutes(byID, byIDPosts),
		dispatch.WithInputs(byID, dispatch.RequiredInput("id", "User ID")),
		dispatch.WithInputs(byIDPosts, dispatch.RequiredInput("id", "Owner ID")),
	)
	require.NoError(t, reg.Add(a))

	t.Run("shared by default", func(t *testing.T) {
		t.Parallel()

		doc := dispatch.BuildDocument(reg, dispatch.Info{Version: "2"})
		require.Len(t, doc.Parameters, 1)
		assert.Equal(t, "Owner ID", doc.Parameters["action_users2_id"].Description)
		assert.Equal(t, doc.Paths["/users/{id}"]["get"].Parameters, doc.Paths["/users/{id}/posts"]["get"].Parameters)
	})

	t.Run("scoped", func(t *testing.T) {
		t.Parallel()

		doc := dispatch.BuildDocument(reg, dispatch.Info{Version: "2"}, dispatch.WithScopedParameterKeys())
		require.Len(t, doc.Parameters, 2)
		assert.Equal(t, "User ID", doc.Parameters["action_users2_get_users_id_id"].Description)
		assert.Equal(t, "Owner ID", doc.Parameters["action_users2_get_users_id_posts_id"].Description)
	})
}

func TestBuildDocumentHiddenRoutes(t *testing.T) {
	t.Parallel()

	reg, a := newDocumentedRegistry(t)
	dispatch.RegisterRoute(reg, a, dispatch.MethodGet, "/internal", dispatch.Hide)
	dispatch.RegisterRoute(reg, a, dispatch.MethodGet, "/users/:id", dispatch.Hide)

	doc := dispatch.BuildDocument(reg, testInfo)
	assert.NotContains(t, doc.Paths, "/internal")
	assert.NotContains(t, doc.Paths, "/users/{id}", "re-registering as hidden removes the route from docs")

	d := dispatch.NewDispatcher(reg)
	require.NoError(t, d.Dispatch(dispatchtest.NewExchange(http.MethodGet, "/internal", "/internal", nil)))
	assert.Equal(t, []string{"users.OnGet"}, a.Log.Entries(), "hidden routes still dispatch")
}

func TestBuildDocumentRoutesOwnedByOtherActions(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	first := dispatch.NewSimpleAction("first", nil, dispatch.WithRoutes(dispatch.NewPath(dispatch.MethodGet, "/shared")))
	second := dispatch.NewSimpleAction("second", nil)
	require.NoError(t, reg.Add(first))
	require.NoError(t, reg.Add(second))
	dispatch.RegisterRoute(reg, second, dispatch.MethodGet, "/shared")

	doc := dispatch.BuildDocument(reg, dispatch.Info{})
	assert.Contains(t, doc.Definitions, "second")
	assert.NotContains(t, doc.Definitions, "first", "first no longer owns any route")
}

func TestBuildDocumentRootPath(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	require.NoError(t, reg.Add(dispatch.NewSimpleAction("root", nil,
		dispatch.WithRoutes(dispatch.NewPath(dispatch.MethodGet, "/")))))

	doc := dispatch.BuildDocument(reg, dispatch.Info{})
	require.Contains(t, doc.Paths, "/")
	assert.Equal(t, "/", doc.Paths["/"]["get"].OperationID)
}

func TestBuildDocumentNormalizesDocKeys(t *testing.T) {
	t.Parallel()

	slashed := dispatch.NewPath(dispatch.MethodGet, "/items")
	unslashed := dispatch.NewPath(dispatch.MethodGet, "items")
	member := dispatch.NewPath(dispatch.MethodGet, "items/:id")

	reg := dispatch.NewRegistry()
	require.NoError(t, reg.Add(dispatch.NewSimpleAction("items", nil,
		dispatch.WithRoutes(slashed, member),
		dispatch.WithSummary(unslashed, "unslashed"),
		dispatch.WithSummary(slashed, "slashed"),
		dispatch.WithSummary(member, "member"),
		dispatch.WithTags(member, "items"),
	)))

	doc := dispatch.BuildDocument(reg, dispatch.Info{})
	assert.Equal(t, "slashed", doc.Paths["/items"]["get"].Summary)
	assert.Equal(t, "member", doc.Paths["/items/{id}"]["get"].Summary)
	assert.Equal(t, []string{"items"}, doc.Paths["/items/{id}"]["get"].Tags)
}

func TestBuildDocumentEmptyRegistry(t *testing.T) {
	t.Parallel()

	doc := dispatch.BuildDocument(dispatch.NewRegistry(), dispatch.Info{})

	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf))
	assert.JSONEq(t, `{
		"swagger": "2.0",
		"info": {
			"title": "", "description": "", "version": "", "termsOfService": "",
			"contact": {"email": ""},
			"license": {"name": "", "url": ""},
			"company": {"name": "", "url": ""}
		},
		"host": "", "basePath": "",
		"schemes": [], "consumes": [], "produces": [],
		"definitions": {}, "paths": {}, "parameters": {}
	}`, buf.String())
}

func TestSwaggerAction(t *testing.T) {
	t.Parallel()

	reg, a := newDocumentedRegistry(t)
	sw := dispatch.NewSwagger(reg, testInfo)
	require.NoError(t, reg.Add(sw))
	require.True(t, sw.Enabled())

	// Registered after the snapshot.
	dispatch.RegisterRoute(reg, a, dispatch.MethodGet, "/late")

	d := dispatch.NewDispatcher(reg)
	ex := dispatchtest.NewExchange(http.MethodGet, "/swagger", "/swagger", nil)
	require.NoError(t, d.Dispatch(ex))

	assert.Equal(t, http.StatusOK, ex.Status())
	assert.Equal(t, "application/json", ex.Header().Get("Content-Type"))

	var doc dispatch.Document
	require.NoError(t, json.Unmarshal(ex.Body(), &doc))
	assert.Contains(t, doc.Paths, "/users/{id}")
	assert.NotContains(t, doc.Paths, "/late", "the snapshot is not refreshed")
	assert.NotContains(t, doc.Paths, "/swagger", "the snapshot predates the swagger action")
	assert.Equal(t, sw.Document().Paths, doc.Paths)

	fresh := dispatch.BuildDocument(reg, testInfo)
	assert.Contains(t, fresh.Paths, "/late")
}

func TestSwaggerDisabled(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	sw := dispatch.NewSwagger(reg, testInfo, dispatch.WithDisabled())
	require.NoError(t, reg.Add(sw))

	assert.False(t, sw.Enabled())
	assert.Nil(t, sw.Document())

	ex := dispatchtest.NewExchange(http.MethodGet, "/swagger", "/swagger", nil)
	require.NoError(t, dispatch.NewDispatcher(reg).Dispatch(ex))

	assert.Equal(t, http.StatusBadRequest, ex.Status())
	assert.Equal(t, `{"error":"Invalid request"}`, string(ex.Body()))
}

func TestSwaggerOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, _ := newDocumentedRegistry(t)
	sw := dispatch.NewSwagger(reg, testInfo,
		dispatch.WithSwaggerRoute("/docs/swagger.json"),
		dispatch.WithSwaggerLogger(logger),
	)

	assert.Equal(t, dispatch.SwaggerName, sw.Name())
	assert.Equal(t, []dispatch.Path{dispatch.NewPath(dispatch.MethodGet, "/docs/swagger.json")}, sw.Routes())
	assert.Contains(t, buf.String(), "swagger document built")
}

func TestSwaggerLeavesAnsweredExchange(t *testing.T) {
	t.Parallel()

	reg, _ := newDocumentedRegistry(t)
	sw := dispatch.NewSwagger(reg, testInfo)

	ex := dispatchtest.NewExchange(http.MethodGet, "/swagger", "/swagger", nil)
	ex.SetError(http.StatusUnauthorized, map[string]string{"error": "nope"})
	sw.OnGet(ex)

	assert.Equal(t, http.StatusUnauthorized, ex.Status())
	assert.JSONEq(t, `{"error":"nope"}`, string(ex.Body()))
}
