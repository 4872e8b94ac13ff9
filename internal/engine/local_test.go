package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/errortypes"
)

func TestLocalGeneratorGenerate(t *testing.T) {
	var got localRequest
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"summary_text": "  The council passed the budget.  "}]`))
	}))
	defer srv.Close()

	g, err := NewLocalGenerator(Bart, srv.URL+"/", "hf-token", nil)
	require.NoError(t, err)
	assert.Equal(t, Bart, g.Name())

	summary, err := g.Generate(context.Background(), "Long input text.", Bounds{MaxLength: 150, MinLength: 50})
	require.NoError(t, err)

	assert.Equal(t, "The council passed the budget.", summary)
	assert.Equal(t, "/models/facebook/bart-large-cnn", gotPath)
	assert.Equal(t, "Bearer hf-token", gotAuth)
	assert.Equal(t, "Long input text.", got.Inputs)
	assert.Equal(t, localParameters{MaxLength: 150, MinLength: 50, DoSample: false}, got.Parameters)
}

func TestLocalGeneratorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     interface{}
		want     string
		wantErr  bool
		emptyErr bool
	}{
		{
			name:   "generated_text field",
			status: http.StatusOK,
			body:   []map[string]string{{"generated_text": "Generated."}},
			want:   "Generated.",
		},
		{
			name:     "empty list",
			status:   http.StatusOK,
			body:     "[]",
			wantErr:  true,
			emptyErr: true,
		},
		{
			name:     "blank summary",
			status:   http.StatusOK,
			body:     `[{"summary_text": "   "}]`,
			wantErr:  true,
			emptyErr: true,
		},
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    map[string]string{"error": "Model is currently loading"},
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := MockServer(t, MockResponseConfig{StatusCode: tt.status, ResponseBody: tt.body})
			defer srv.Close()

			g, err := NewLocalGenerator(Pegasus, srv.URL, "", nil)
			require.NoError(t, err)

			summary, err := g.Generate(context.Background(), "text", Bounds{MaxLength: 10})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, summary)
				return
			}

			require.Error(t, err)
			assert.Empty(t, summary)
			assert.True(t, errortypes.IsGenerationError(err))
			assert.Contains(t, err.Error(), Pegasus)
			if tt.emptyErr {
				assert.ErrorIs(t, err, ErrEmptyOutput)
			}
		})
	}
}

func TestLocalGeneratorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewLocalGenerator(T5, url, "", nil)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "text", Bounds{})
	require.Error(t, err)
	assert.True(t, errortypes.IsGenerationError(err))

	var appErr *errortypes.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, T5, appErr.Fields["provider"])
	assert.Equal(t, "t5-base", appErr.Fields["model_id"])
}

func TestNewLocalGeneratorRejectsRemote(t *testing.T) {
	_, err := NewLocalGenerator(OpenAI, "", "", nil)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}
