package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListJobs(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/jobs/all")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jobs []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jobs))
	assert.Len(t, jobs, 10)
	assert.Equal(t, "Senior Frontend Engineer", jobs[0]["title"])
}

func TestGetAssessmentReturnsNullWhenMissing(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/assessments/j9")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, "null", strings.TrimSpace(body.String()))
}

func TestPutAssessmentPathWins(t *testing.T) {
	server, store := newTestServer(t)

	payload := `{"id":"a7","jobId":"j1","sections":[{"id":"s1","title":"Intro","questions":[
		{"id":"q1","type":"numeric","text":"Age","required":true,"validation":{"min":18}}
	]}]}`
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/assessments/j7", strings.NewReader(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, "j7", saved["jobId"])

	stored, err := store.Load(req.Context(), "j7")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "a7", stored.ID)
	original, _ := store.Load(req.Context(), "j1")
	assert.Equal(t, "a1", original.ID)
}

func TestPutAssessmentRejectsSchemaViolations(t *testing.T) {
	server, store := newTestServer(t)

	payloads := map[string]string{
		"unknown type":   `{"sections":[{"id":"s1","questions":[{"id":"q1","type":"essay"}]}]}`,
		"empty sections": `{"id":"a3","sections":[]}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, server.URL+"/api/assessments/j3", strings.NewReader(payload))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			stored, err := store.Load(context.Background(), "j3")
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestSubmitEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	valid := `{"q8":"3","q9":"RICE","q10":"Interviews and surveys"}`
	resp, err := http.Post(server.URL+"/api/assessments/j2/submit", "application/json", strings.NewReader(valid))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body["submissionId"], "sub_"))
	assert.Len(t, store.Submissions("j2"), 1)

	invalid := `{"q8":"3"}`
	resp2, err := http.Post(server.URL+"/api/assessments/j2/submit", "application/json", strings.NewReader(invalid))
	require.NoError(t, err)
	defer resp2.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
	var verr map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&verr))
	assert.Equal(t, "RequiredFieldMissing", verr["code"])
	assert.Equal(t, "q9", verr["questionId"])
	assert.Len(t, store.Submissions("j2"), 1)
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
