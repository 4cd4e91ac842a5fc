package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacelift-io/flows-app-aws-api/internal/config"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

func TestClassifyInvocationError(t *testing.T) {
	cfgErr := &flowserrors.ConfigurationError{
		Block:    "ec2.StopInstances",
		Problems: []flowserrors.FieldProblem{{Source: flowserrors.SourceEvent, Field: "region", Message: "is required"}},
	}
	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantJSON string
	}{
		{name: "configuration", err: cfgErr, wantCode: ExitConfiguration, wantJSON: "configuration"},
		{name: "not found", err: &flowserrors.NotFoundError{Resource: "block", ID: "ec2.Nope"}, wantCode: ExitNotFound, wantJSON: "not_found"},
		{name: "normalization", err: &flowserrors.ResultNormalizationError{Block: "x", Cause: errors.New("bad")}, wantCode: ExitInvocationFailed, wantJSON: "result_normalization"},
		{name: "client construction", err: &flowserrors.InvocationError{Block: "x", Stage: flowserrors.StageClient, Cause: errors.New("bad")}, wantCode: ExitInvocationFailed, wantJSON: "internal"},
		{name: "provider", err: apiErr, wantCode: ExitProviderError, wantJSON: "provider.auth"},
		{name: "already classified", err: NewConfigurationError("bad flag", nil), wantCode: ExitConfiguration, wantJSON: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyInvocationError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantJSON, ErrorCode(got))
			assert.True(t, errors.Is(got, tt.err) || got == tt.err)
		})
	}

	assert.Nil(t, ClassifyInvocationError(nil))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	err := ClassifyInvocationError(&flowserrors.ConfigurationError{
		Block:    "ec2.StopInstances",
		Problems: []flowserrors.FieldProblem{{Source: flowserrors.SourceEvent, Field: "region", Message: "is required"}},
	})

	code := PrintError(&buf, err)
	assert.Equal(t, ExitConfiguration, code)
	assert.Contains(t, buf.String(), "region: is required")
	assert.Contains(t, buf.String(), "Suggestion: ")
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := ClassifyInvocationError(&flowserrors.ConfigurationError{
		Problems: []flowserrors.FieldProblem{{Source: flowserrors.SourceApp, Field: "accessKeyId", Message: "is required"}},
	})
	require.NoError(t, EmitJSONError(&buf, "invoke", NewJSONError(err)))

	var got struct {
		Command string      `json:"command"`
		Success bool        `json:"success"`
		Errors  []JSONError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "invoke", got.Command)
	assert.False(t, got.Success)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "configuration", got.Errors[0].Code)
	assert.Equal(t, "accessKeyId", got.Errors[0].Problems[0].Field)
	assert.Equal(t, flowserrors.SourceApp, got.Errors[0].Problems[0].Source)
}

func TestReadSecret_Pipe(t *testing.T) {
	var prompt bytes.Buffer
	got, err := ReadSecret(strings.NewReader("s3cr3t\n"), &prompt, "Value")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)
	assert.Empty(t, prompt.String(), "no prompt when input is not a terminal")
}

func TestBuildRegistry(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.Default()

	reg, err := BuildRegistry(cfg, RuntimeOptions{})
	require.NoError(t, err)
	full := reg.Len()
	assert.Positive(t, full)

	cfg.Catalog.Include = []string{"sts.*", "cloudwatch.DeleteAlarms"}
	reg, err = BuildRegistry(cfg, RuntimeOptions{})
	require.NoError(t, err)
	assert.Less(t, reg.Len(), full)
	_, err = reg.Get("cloudwatch.DeleteAlarms")
	assert.NoError(t, err)
	_, err = reg.Get("ec2.DescribeRegions")
	assert.True(t, flowserrors.IsNotFound(err))

	cfg.Catalog.Include = []string{"nothing.*"}
	_, err = BuildRegistry(cfg, RuntimeOptions{})
	assert.ErrorContains(t, err, "matches no blocks")
}
