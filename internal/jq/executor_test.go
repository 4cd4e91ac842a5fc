package jq

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Execute(t *testing.T) {
	payload := map[string]any{
		"Reservations": []any{
			map[string]any{"Instances": []any{
				map[string]any{"InstanceId": "i-1", "CpuOptions": map[string]any{"CoreCount": json.Number("2")}},
				map[string]any{"InstanceId": "i-2", "CpuOptions": map[string]any{"CoreCount": json.Number("4")}},
			}},
		},
	}

	tests := []struct {
		name       string
		expression string
		data       any
		want       []any
		wantErr    string
	}{
		{
			name:       "empty expression returns data as-is",
			expression: "",
			data:       map[string]any{"foo": "bar"},
			want:       []any{map[string]any{"foo": "bar"}},
		},
		{
			name:       "simple field extraction",
			expression: ".foo",
			data:       map[string]any{"foo": "bar"},
			want:       []any{"bar"},
		},
		{
			name:       "stream of values",
			expression: ".Reservations[].Instances[].InstanceId",
			data:       payload,
			want:       []any{"i-1", "i-2"},
		},
		{
			name:       "arithmetic on json numbers",
			expression: "[.Reservations[].Instances[].CpuOptions.CoreCount] | add",
			data:       payload,
			want:       []any{6},
		},
		{
			name:       "no output",
			expression: "empty",
			data:       payload,
			want:       nil,
		},
		{
			name:       "invalid expression",
			expression: ".[",
			data:       payload,
			wantErr:    "invalid jq expression",
		},
		{
			name:       "runtime error",
			expression: ".foo | keys",
			data:       map[string]any{"foo": "bar"},
			wantErr:    "jq:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExecutor(0, 0).Execute(context.Background(), tt.expression, tt.data)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutor_Validate(t *testing.T) {
	e := NewExecutor(0, 0)
	assert.NoError(t, e.Validate(""))
	assert.NoError(t, e.Validate(".Alarms[] | .AlarmName"))
	assert.ErrorContains(t, e.Validate(".["), "invalid jq expression")
	assert.ErrorContains(t, e.Validate("undefined_fn(1)"), "jq compilation failed")
}

func TestExecutor_Timeout(t *testing.T) {
	_, err := NewExecutor(50*time.Millisecond, 0).Execute(context.Background(), "until(false; .)", nil)
	assert.ErrorContains(t, err, "timeout")
}

func TestExecutor_MaxResults(t *testing.T) {
	_, err := NewExecutor(0, 3).Execute(context.Background(), "range(10)", nil)
	assert.ErrorContains(t, err, "more than 3 results")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 42, normalize(json.Number("42")))
	assert.Equal(t, 1.5, normalize(json.Number("1.5")))
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, want, normalize(json.Number("123456789012345678901234567890")))
}
