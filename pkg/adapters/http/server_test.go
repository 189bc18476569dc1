package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/pkg/adapters/memory"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Save(t.Context(), domain.NewBuild("b1", "app", 1,
		domain.UserCause("alice"),
	)))
	require.NoError(t, store.Save(t.Context(), domain.NewBuild("b2", "app", 2,
		domain.UpstreamCause("core", 7),
		domain.TimerCause(),
	)))

	loader, err := memory.NewLoader(
		domain.Condition{ID: "only-alice", Matcher: domain.MatcherUser, Filter: "alice", Exclusive: true},
		domain.Condition{ID: "from-core", Matcher: domain.MatcherUpstream, Filter: "core"},
	)
	require.NoError(t, err)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics\n"))
	})

	gate := runcondition.New(runcondition.WithSource(store), runcondition.WithConditions(loader))
	return NewHandler(gate, WithStore(store), WithConditions(loader), WithMetrics(metrics))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeDecision(t *testing.T, w *httptest.ResponseRecorder) condition.Decision {
	t.Helper()
	var d condition.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	return d
}

func TestSpecIsValid(t *testing.T) {
	doc, err := GetSpec()
	require.NoError(t, err)
	assert.Contains(t, doc.Components.Schemas, "EvaluateRequest")
}

func TestEvaluate(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		result bool
		reason string
	}{
		{
			name:   "user in filter",
			body:   `{"condition":{"matcher":"user","filter":"alice,bob"},"causes":[{"kind":"user","user_id":"bob"}]}`,
			result: true,
			reason: "matched",
		},
		{
			name:   "exclusive with two causes",
			body:   `{"condition":{"matcher":"user","filter":"","exclusive":true},"causes":[{"kind":"user","user_id":"bob"},{"kind":"timer"}]}`,
			result: false,
			reason: "exclusive: 2 causes",
		},
		{
			name:   "upstream not in filter",
			body:   `{"condition":{"matcher":"upstream","filter":"core"},"causes":[{"kind":"upstream","upstream_project":"web","upstream_build":3}]}`,
			result: false,
			reason: "no matching cause",
		},
		{
			name:   "empty cause list",
			body:   `{"condition":{"matcher":"user"},"causes":[]}`,
			result: false,
			reason: "no matching cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/evaluate", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			d := decodeDecision(t, w)
			assert.Equal(t, tt.result, d.Result)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestEvaluate_Rejected(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"condition":`},
		{"unknown matcher", `{"condition":{"matcher":"timer"},"causes":[]}`},
		{"missing causes", `{"condition":{"matcher":"user"}}`},
		{"empty filter token", `{"condition":{"matcher":"user","filter":"alice,,bob"},"causes":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/evaluate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestEvaluate_MalformedCausesAreNotRelevant(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name      string
		exclusive bool
		second    string
		result    bool
	}{
		{"empty cause", false, `{}`, true},
		{"empty cause counts as exclusive competitor", true, `{}`, false},
		{"negative build number", false, `{"kind":"remote","upstream_build":-1}`, true},
		{"unknown kind", true, `{"kind":"scm"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"condition":{"matcher":"user","filter":"fred","exclusive":` + strconv.FormatBool(tt.exclusive) + `},` +
				`"causes":[{"kind":"user","user_id":"fred"},` + tt.second + `]}`
			w := do(t, h, "POST", "/evaluate", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			d := decodeDecision(t, w)
			assert.Equal(t, tt.result, d.Result)
			require.Len(t, d.Verdicts, 2)
			assert.False(t, d.Verdicts[1].Relevant)
		})
	}
}

func TestEvaluate_BodyTooLarge(t *testing.T) {
	h := newTestHandler(t)
	big := `{"condition":{"matcher":"user","filter":"` + strings.Repeat("a", MaxBodySize) + `"},"causes":[]}`

	w := do(t, h, "POST", "/evaluate", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateBuild(t *testing.T) {
	h := newTestHandler(t)

	t.Run("inline condition", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/b2/evaluate", `{"condition":{"matcher":"upstream","filter":"core"}}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		d := decodeDecision(t, w)
		assert.True(t, d.Result)
		require.Len(t, d.Verdicts, 2)
		assert.True(t, d.Verdicts[0].Matched)
		assert.False(t, d.Verdicts[1].Relevant)
	})

	t.Run("named condition", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/b1/evaluate", `{"condition_id":"only-alice"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decodeDecision(t, w).Result)

		w = do(t, h, "POST", "/builds/b2/evaluate", `{"condition_id":"from-core"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decodeDecision(t, w).Result)
	})

	t.Run("unknown build", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/missing/evaluate", `{"condition_id":"only-alice"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown condition", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/b1/evaluate", `{"condition_id":"nope"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("neither condition nor id", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/b1/evaluate", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("both condition and id", func(t *testing.T) {
		w := do(t, h, "POST", "/builds/b1/evaluate", `{"condition":{"matcher":"user"},"condition_id":"only-alice"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecordBuild(t *testing.T) {
	store := memory.NewStore()
	gate := runcondition.New(runcondition.WithSource(store))
	h := NewHandler(gate, WithStore(store))

	w := do(t, h, "POST", "/builds/app-9/evaluate", `{"condition":{"matcher":"user","filter":"fred"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing recorded yet")

	w = do(t, h, "PUT", "/builds/app-9", `{"project":"app","number":9,"causes":[{"kind":"timer"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved domain.Build
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "app-9", saved.ID)

	w = do(t, h, "POST", "/builds/app-9/evaluate", `{"condition":{"matcher":"user","filter":"fred"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeDecision(t, w).Result)

	w = do(t, h, "POST", "/builds/app-9/causes", `{"kind":"user","user_id":"fred"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, "POST", "/builds/app-9/evaluate", `{"condition":{"matcher":"user","filter":"fred"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	d := decodeDecision(t, w)
	assert.True(t, d.Result)
	require.Len(t, d.Verdicts, 2)
	assert.Equal(t, domain.CauseTimer, d.Verdicts[0].Cause.Kind, "appended causes keep insertion order")

	w = do(t, h, "GET", "/builds/app-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	var loaded domain.Build
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, []domain.Cause{domain.TimerCause(), domain.UserCause("fred")}, loaded.Causes)

	w = do(t, h, "DELETE", "/builds/app-9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", "/builds/app-9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordBuild_Errors(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/builds/missing/causes", `{"kind":"timer"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PUT", "/builds/b3", `{"number":"three"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/builds/b1/causes", `[{"kind":"timer"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bare := NewHandler(runcondition.New())
	w = do(t, bare, "PUT", "/builds/b1", `{}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestEvaluateBuild_NotConfigured(t *testing.T) {
	h := NewHandler(runcondition.New())

	w := do(t, h, "POST", "/builds/b1/evaluate", `{"condition_id":"x"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(t, h, "GET", "/conditions", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestConditions(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/conditions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.Equal(t, []string{"from-core", "only-alice"}, ids)

	w = do(t, h, "GET", "/conditions/only-alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cond domain.Condition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cond))
	assert.Equal(t, domain.MatcherUser, cond.Matcher)
	assert.True(t, cond.Exclusive)

	w = do(t, h, "GET", "/conditions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuxiliaryEndpoints(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_version":"1.0.0"`)

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")

	w = do(t, h, "OPTIONS", "/evaluate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
