//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docstudio-go/chat"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
	"trpc.group/trpc-go/trpc-docstudio-go/history/inmemory"
	"trpc.group/trpc-go/trpc-docstudio-go/internal/modeltest"
	_ "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader/text"
	"trpc.group/trpc-go/trpc-docstudio-go/model"
)

type stubLister struct {
	names []string
	err   error
}

func (l stubLister) ListModels(context.Context) ([]string, error) { return l.names, l.err }

func factoryFor(m model.Model) func(string) (model.Model, error) {
	return func(string) (model.Model, error) { return m, nil }
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	base := []Option{
		WithModelFactory(factoryFor(modeltest.New(modeltest.Echo))),
		WithDefaultModel("stub-model"),
		WithUploadDir(filepath.Join(t.TempDir(), "uploads")),
		WithReportDir(filepath.Join(t.TempDir(), "reports")),
	}
	ts := httptest.NewServer(New(append(base, opts...)...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	rsp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { rsp.Body.Close() })
	return rsp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	rsp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { rsp.Body.Close() })
	return rsp
}

func decode[T any](t *testing.T, rsp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&v))
	return v
}

func readAll(t *testing.T, rsp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealthAndCatalog(t *testing.T) {
	ts := newTestServer(t,
		WithModels("gemma3:27b", "qwen3:32b"),
		WithModelLister(stubLister{names: []string{"qwen3:32b", "llama3:8b"}}),
	)
	rsp := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	rsp = get(t, ts.URL+"/api/catalog")
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	cat := decode[catalogResponse](t, rsp)
	assert.Len(t, cat.Tasks, 5)
	assert.Len(t, cat.Modes, 5)
	assert.Len(t, cat.Methods, 5)
	assert.Equal(t, []string{"gemma3:27b", "qwen3:32b", "llama3:8b"}, cat.Models)
	assert.Equal(t, "stub-model", cat.DefaultModel)
	assert.Len(t, cat.GraphMethods, 3)
}

func TestCatalog_ListerFailure(t *testing.T) {
	ts := newTestServer(t, WithModels("gemma3:27b"), WithModelLister(stubLister{err: errors.New("offline")}))
	cat := decode[catalogResponse](t, get(t, ts.URL+"/api/catalog"))
	assert.Equal(t, []string{"gemma3:27b"}, cat.Models)
}

func TestChunk(t *testing.T) {
	ts := newTestServer(t)
	rsp := postJSON(t, ts.URL+"/api/chunk", chunkRequest{Text: "First part here.\n\nSecond part here.", MaxLength: 20})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	out := decode[chunkResponse](t, rsp)
	assert.Equal(t, []string{"First part here.", "Second part here."}, out.Chunks)
	assert.Equal(t, 2, out.Count)

	rsp = postJSON(t, ts.URL+"/api/chunk", chunkRequest{Text: "  "})
	assert.Equal(t, 0, decode[chunkResponse](t, rsp).Count)

	bad, err := http.Post(ts.URL+"/api/chunk", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Contains(t, decode[map[string]string](t, bad)["error"], "invalid request")
}

func TestChat_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	rsp := postJSON(t, ts.URL+"/api/chat", chatRequest{Message: "hello there"})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	out := decode[chatResponse](t, rsp)
	assert.Equal(t, "echo: hello there", out.Reply)
	require.NotEmpty(t, out.SessionID)
	require.Len(t, out.Session.Turns, 1)

	rsp = get(t, ts.URL+"/api/chat/"+out.SessionID)
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	rsp = postJSON(t, ts.URL+"/api/chat/"+out.SessionID+"/clear", struct{}{})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	cleared := decode[chat.Session](t, rsp)
	assert.Equal(t, out.SessionID, cleared.ID)
	assert.Empty(t, cleared.Turns)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/chat/"+out.SessionID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	rsp = get(t, ts.URL+"/api/chat/"+out.SessionID)
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)

	rsp = postJSON(t, ts.URL+"/api/chat", chatRequest{Message: " "})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
}

func TestChat_ModelFailure(t *testing.T) {
	failing := modeltest.New(func(*model.Request) (string, error) { return "", errors.New("model offline") })
	ts := newTestServer(t, WithModelFactory(factoryFor(failing)))
	rsp := postJSON(t, ts.URL+"/api/chat", chatRequest{Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, rsp.StatusCode)
	out := decode[chatResponse](t, rsp)
	assert.Contains(t, out.Error, "model offline")
	require.NotNil(t, out.Session)
	assert.True(t, out.Session.Turns[0].Failed)
}

func TestChat_Stream(t *testing.T) {
	ts := newTestServer(t)
	rsp := postJSON(t, ts.URL+"/api/chat", chatRequest{Message: "stream me please", Stream: true})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Equal(t, "text/event-stream", rsp.Header.Get("Content-Type"))
	body := readAll(t, rsp)
	assert.Contains(t, body, "event: delta\n")
	assert.Contains(t, body, "event: done\n")
	assert.Contains(t, body, `"reply":"echo: stream me please"`)
}

func TestEnhance(t *testing.T) {
	ts := newTestServer(t)
	rsp := postJSON(t, ts.URL+"/api/enhance", enhanceRequest{Prompt: "Describe Rome", Method: "cot", DryRun: true})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Contains(t, decode[enhanceResponse](t, rsp).Result, "Describe Rome")

	rsp = postJSON(t, ts.URL+"/api/enhance", enhanceRequest{Prompt: "Describe Rome", Method: "cot"})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.True(t, strings.HasPrefix(decode[enhanceResponse](t, rsp).Result, "echo: "))

	rsp = postJSON(t, ts.URL+"/api/enhance", enhanceRequest{Prompt: "Describe Rome", Method: "magic"})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	rsp = postJSON(t, ts.URL+"/api/enhance", enhanceRequest{Prompt: "", Method: "cot"})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rsp = postJSON(t, ts.URL+"/api/enhance", enhanceRequest{Prompt: "Describe Rome", Method: "tot", Stream: true})
	body := readAll(t, rsp)
	assert.Contains(t, body, "event: delta\n")
	assert.Contains(t, body, "event: done\n")
}

func multipartUpload(t *testing.T, url, filename, content string, fields map[string][]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.Close())
	rsp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { rsp.Body.Close() })
	return rsp
}

func TestAnalyze_Report(t *testing.T) {
	store := inmemory.New()
	reply := modeltest.New(func(*model.Request) (string, error) { return "## Key points\n\n- one\n- two", nil })
	ts := newTestServer(t, WithModelFactory(factoryFor(reply)), WithHistory(store))

	rsp := multipartUpload(t, ts.URL+"/api/analyze", "notes.txt", "Some notes about Rome.",
		map[string][]string{"tasks": {"faq", "timeline"}, "mode": {"cot"}})
	body := readAll(t, rsp)
	require.Equal(t, http.StatusOK, rsp.StatusCode, body)
	var out analyzeResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "notes.txt", out.FileName)
	assert.Len(t, out.Sections, 2)
	require.NotEmpty(t, out.ReportURL)

	doc := get(t, ts.URL+out.ReportURL)
	require.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Equal(t, docxContentType, doc.Header.Get("Content-Type"))
	assert.Contains(t, doc.Header.Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, readAll(t, doc))

	records := decode[[]map[string]any](t, get(t, ts.URL+"/api/analyses"))
	assert.Len(t, records, 1)
}

func TestAnalyze_Stream(t *testing.T) {
	ts := newTestServer(t)
	rsp := multipartUpload(t, ts.URL+"/api/analyze?stream=true", "notes.md", "# Title\n\nBody text.",
		map[string][]string{"tasks": {"faq"}})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	body := readAll(t, rsp)
	assert.Contains(t, body, "event: progress\n")
	assert.Contains(t, body, `"stage":"extracting"`)
	assert.Contains(t, body, "event: result\n")
	assert.NotContains(t, body, "event: error\n")
}

func TestAnalyze_BadInput(t *testing.T) {
	ts := newTestServer(t)
	rsp := multipartUpload(t, ts.URL+"/api/analyze", "virus.exe", "MZ", nil)
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rsp = multipartUpload(t, ts.URL+"/api/analyze", "notes.txt", "text", map[string][]string{"mode": {"fast"}})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rsp = multipartUpload(t, ts.URL+"/api/analyze", "blank.txt", "   ", nil)
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	noForm, err := http.Post(ts.URL+"/api/analyze", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer noForm.Body.Close()
	assert.Equal(t, http.StatusBadRequest, noForm.StatusCode)
}

func TestAnalyze_TooLarge(t *testing.T) {
	ts := newTestServer(t, WithMaxUploadSize(256))
	rsp := multipartUpload(t, ts.URL+"/api/analyze", "big.txt", strings.Repeat("word ", 100), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rsp.StatusCode)
}

func TestReport_Rejected(t *testing.T) {
	ts := newTestServer(t)
	rsp := get(t, ts.URL+`/api/reports/..%5Csecret.docx`)
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	rsp = get(t, ts.URL+"/api/reports/missing.docx")
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
}

func echoRunner(t *testing.T, opts ...graphrag.Option) *graphrag.Runner {
	t.Helper()
	base := []graphrag.Option{
		graphrag.WithCommand("echo"),
		graphrag.WithRoot("./kb"),
		graphrag.WithResultDir(t.TempDir()),
	}
	r, err := graphrag.NewRunner(append(base, opts...)...)
	require.NoError(t, err)
	return r
}

func TestGraphRAG_Disabled(t *testing.T) {
	ts := newTestServer(t)
	rsp := postJSON(t, ts.URL+"/api/graphrag/query", graphQueryRequest{Query: "q"})
	assert.Equal(t, http.StatusServiceUnavailable, rsp.StatusCode)
	rsp = get(t, ts.URL+"/api/graph/stats")
	assert.Equal(t, http.StatusServiceUnavailable, rsp.StatusCode)

	presets := decode[[]presetItem](t, get(t, ts.URL+"/api/graphrag/presets"))
	require.Len(t, presets, 10)
	assert.Equal(t, 9, presets[9].Index)
}

func TestGraphRAG_Query(t *testing.T) {
	store := inmemory.New()
	ts := newTestServer(t, WithGraphRunner(echoRunner(t, graphrag.WithHistory(store))), WithHistory(store))

	rsp := postJSON(t, ts.URL+"/api/graphrag/query", graphQueryRequest{Query: "what is CoT?", Method: "global"})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	res := decode[graphrag.QueryResult](t, rsp)
	assert.False(t, res.Failed)
	assert.Equal(t, "--root ./kb --method global --query what is CoT?\n", res.Text)

	rsp = postJSON(t, ts.URL+"/api/graphrag/query", graphQueryRequest{Query: "q", Method: "basic"})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	rsp = postJSON(t, ts.URL+"/api/graphrag/query", graphQueryRequest{Query: " "})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rsp = postJSON(t, ts.URL+"/api/graphrag/presets/2", struct{}{})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	p, err := graphrag.PresetAt(2)
	require.NoError(t, err)
	assert.Equal(t, p.Question, decode[graphrag.QueryResult](t, rsp).Query)

	rsp = postJSON(t, ts.URL+"/api/graphrag/presets/abc", struct{}{})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	rsp = postJSON(t, ts.URL+"/api/graphrag/presets/99", struct{}{})
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)

	records := decode[[]map[string]any](t, get(t, ts.URL+"/api/graphrag/history?limit=10"))
	assert.Len(t, records, 2)
}

func TestGraphRAG_Postprocess(t *testing.T) {
	reply := modeltest.New(func(*model.Request) (string, error) { return "Summary\n- first\n- second", nil })
	ts := newTestServer(t, WithModelFactory(factoryFor(reply)))

	rsp := postJSON(t, ts.URL+"/api/graphrag/translate", postprocessRequest{Text: "answer"})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Equal(t, "===== Summary =====\n\n- first\n\n- second", decode[postprocessResponse](t, rsp).Text)

	rsp = postJSON(t, ts.URL+"/api/graphrag/refine", postprocessRequest{Text: "answer"})
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	rsp = postJSON(t, ts.URL+"/api/graphrag/refine", postprocessRequest{Text: ""})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
}

const testGraphML = `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <graph edgedefault="undirected">
    <node id="PROMPT" /><node id="ROLE" /><node id="FORMAT" />
    <edge source="PROMPT" target="ROLE" /><edge source="PROMPT" target="FORMAT" />
  </graph>
</graphml>`

func TestGraphStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.GraphFile), []byte(testGraphML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.StatsFile), []byte(`{"documents": 1}`), 0o644))
	ts := newTestServer(t, WithArtifactsDir(dir))

	rsp := get(t, ts.URL+"/api/graph/stats")
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	out := decode[graphStatsResponse](t, rsp)
	assert.Equal(t, 3, out.Stats.Nodes)
	assert.Equal(t, "PROMPT", out.Stats.TopCentral[0].Node)
	assert.Equal(t, float64(1), out.IndexStats["documents"])

	qs := decode[[]map[string]any](t, get(t, ts.URL+"/api/graph/questions"))
	assert.Greater(t, len(qs), len(graphrag.Presets()))

	empty := newTestServer(t, WithArtifactsDir(t.TempDir()))
	rsp = get(t, empty.URL+"/api/graph/stats")
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rsp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Less(t, rsp.StatusCode, 300)
	assert.Equal(t, "*", rsp.Header.Get("Access-Control-Allow-Origin"))
}
