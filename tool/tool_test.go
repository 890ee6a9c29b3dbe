package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Tool = (*FunctionTool)(nil)

func TestFunctionTool_Call(t *testing.T) {
	sum := NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	assert.Equal(t, "calculate_sum", sum.Name())

	result, err := sum.Call(context.Background(), map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, result)
}

func TestFunctionTool_WrapsPlainErrors(t *testing.T) {
	failing := NewFunctionTool("failing", "Always fails", nil,
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	)

	_, err := failing.Call(context.Background(), nil)
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "failing", toolErr.Tool)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_PreservesToolErrors(t *testing.T) {
	custom := NewToolError("custom", "bad input", "VALIDATION_ERROR")
	failing := NewFunctionTool("custom", "Fails with a custom code", nil,
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, custom
		},
	)

	_, err := failing.Call(context.Background(), nil)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Error(), "[VALIDATION_ERROR]")
}
