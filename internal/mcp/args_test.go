package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for bindArguments:
// - native JSON types bind by json tag
// - string-encoded numbers and booleans are coerced
// - missing optional fields keep their zero values
// - values that cannot be coerced return an error

type bindTarget struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Exact bool   `json:"exact"`
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func TestBindArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]interface{}
		want bindTarget
	}{
		{
			name: "native types",
			args: map[string]interface{}{"query": "gauge", "limit": float64(5), "exact": true},
			want: bindTarget{Query: "gauge", Limit: 5, Exact: true},
		},
		{
			name: "string encoded",
			args: map[string]interface{}{"query": "gauge", "limit": "12", "exact": "true"},
			want: bindTarget{Query: "gauge", Limit: 12, Exact: true},
		},
		{
			name: "optional fields missing",
			args: map[string]interface{}{"query": "dial"},
			want: bindTarget{Query: "dial"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bindTarget
			require.NoError(t, bindArguments(toolRequest(tt.args), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindArguments_InvalidValue(t *testing.T) {
	t.Parallel()

	var got bindTarget
	err := bindArguments(toolRequest(map[string]interface{}{"limit": "many"}), &got)
	assert.Error(t, err)
}
