package fragment

import (
	"testing"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{
		"code-interpreter-v1", "nextjs-developer", "vue-developer", "streamlit-developer", "gradio-developer",
	}, IDs())

	ci, ok := Lookup(CodeInterpreterID)
	require.True(t, ok)
	assert.Nil(t, ci.Port)

	st, ok := Lookup("streamlit-developer")
	require.True(t, ok)
	require.NotNil(t, st.Port)
	assert.Equal(t, 8501, *st.Port)

	_, ok = Lookup("rails-developer")
	assert.False(t, ok)

	all := Templates()
	all[0].Name = "changed"
	assert.Equal(t, "Python data analyst", Templates()[0].Name)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		check   func(t *testing.T, f *Fragment)
		wantErr bool
	}{
		{
			name:  "plain json",
			reply: `{"template":"streamlit-developer","title":"Dashboard","file_path":"app.py","code":"import streamlit","port":8501}`,
			check: func(t *testing.T, f *Fragment) {
				assert.Equal(t, "Dashboard", f.Title)
				assert.False(t, f.HasAdditionalDependencies)
				require.NotNil(t, f.Port)
				assert.Equal(t, 8501, *f.Port)
			},
		},
		{
			name: "fenced with prose",
			reply: "Here you go:\n```json\n" +
				`{"commentary":"c","template":"nextjs-developer","title":"T","file_path":"pages/index.tsx","code":"export default 1","additional_dependencies":["zod"]}` +
				"\n```\nEnjoy!",
			check: func(t *testing.T, f *Fragment) {
				assert.True(t, f.HasAdditionalDependencies)
				assert.Equal(t, "npm install zod", f.InstallDependenciesCommand)
			},
		},
		{
			name:    "not json",
			reply:   "Sorry, I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "missing code",
			reply:   `{"template":"gradio-developer","title":"T","file_path":"app.py"}`,
			wantErr: true,
		},
		{
			name:    "unknown template",
			reply:   `{"template":"rails","title":"T","file_path":"app.rb","code":"x"}`,
			wantErr: true,
		},
		{
			name:    "escaping file path",
			reply:   `{"template":"gradio-developer","title":"T","file_path":"../etc/passwd","code":"x"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestValidate_DomainError(t *testing.T) {
	f := &Fragment{Template: "gradio-developer", Title: "T", FilePath: "app.py"}
	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Code")
}

func TestInstallCommand(t *testing.T) {
	assert.Equal(t, "pip install polars duckdb", InstallCommand(CodeInterpreterID, []string{"polars", "duckdb"}))
	assert.Equal(t, "npm install swr", InstallCommand("vue-developer", []string{"swr"}))
}
