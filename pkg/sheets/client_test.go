package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendValues(t *testing.T) {
	var got struct {
		Values [][]any `json:"values"`
	}
	var query map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-id/values/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)

		query = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRows":2}}`))
	}))
	defer ts.Close()

	c, err := NewClient(context.Background(), Config{Endpoint: ts.URL + "/"})
	require.NoError(t, err)

	n, err := c.AppendValues(context.Background(), "sheet-id", TabRange("Answers"), [][]any{
		{"List all departments", "MATCH (d:Department) RETURN d.name"},
		{"IT"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, "RAW", query["valueInputOption"])
	assert.Equal(t, "INSERT_ROWS", query["insertDataOption"])
	require.Len(t, got.Values, 2)
	assert.Equal(t, []any{"IT"}, got.Values[1])
}

func TestAppendValuesError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer ts.Close()

	c, err := NewClient(context.Background(), Config{Endpoint: ts.URL + "/"})
	require.NoError(t, err)

	_, err = c.AppendValues(context.Background(), "sheet-id", TabRange(""), [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Sheet1'!A1")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
}

func TestTabRange(t *testing.T) {
	assert.Equal(t, "'Sheet1'!A1", TabRange(""))
	assert.Equal(t, "'Q&A log'!A1", TabRange("Q&A log"))
	assert.Equal(t, "'Kim''s answers'!A1", TabRange("Kim's answers"))
	assert.Equal(t, "''''!A1", TabRange("'"))
}
