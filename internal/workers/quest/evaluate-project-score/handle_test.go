package evaluateprojectscore

import (
	"context"
	"testing"

	"quest-workers/internal/common/errors"
	"quest-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
)

// ==========================
// Fake Zeebe gateway
// ==========================

type recordingGateway struct {
	pb.GatewayClient
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *recordingGateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *recordingGateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *recordingGateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

type fakeJobClient struct {
	gateway *recordingGateway
}

func noRetry(context.Context, error) bool { return false }

func (c fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func createJob(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       key,
		Type:      TaskType,
		Retries:   3,
		Variables: variables,
	}}
}

// ==========================
// ParseVariables Tests
// ==========================

func TestParseVariables(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		projectID string
		wantErr   bool
	}{
		{"empty string", "", "", false},
		{"whitespace", "  \n", "", false},
		{"project id", `{"projectId":"p-1"}`, "p-1", false},
		{"malformed", `{"projectId":`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ParseVariables(tt.variables)
			if tt.wantErr {
				requireCode(t, err, errors.ErrCodeInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.projectID, input.ProjectID)
			assert.Nil(t, input.Answers)
		})
	}
}

// ==========================
// Handle Tests
// ==========================

func TestHandle_CompletesWithJobScopedLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewHandler(DefaultConfig(), nil, nil, nil, logger.NewZapAdapter(zap.New(core)))
	gateway := &recordingGateway{}

	h.Handle(fakeJobClient{gateway}, createJob(7, `{"projectId":"p-1","answers":{"stakeholders":["Teachers"]}}`))

	require.Len(t, gateway.completed, 1)
	assert.Equal(t, int64(7), gateway.completed[0].JobKey)
	assert.Contains(t, gateway.completed[0].Variables, `"overallScore":10`)

	entries := logs.FilterMessage("project score calculated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(7), fields["jobKey"])
	assert.NotEmpty(t, fields["correlationId"])
	assert.Equal(t, TaskType, fields["taskType"])
}

func TestHandle_EmptyVariablesNeedAnswers(t *testing.T) {
	h := NewHandler(DefaultConfig(), nil, nil, nil, logger.NewNoOpLogger())
	gateway := &recordingGateway{}

	h.Handle(fakeJobClient{gateway}, createJob(8, ""))

	assert.Empty(t, gateway.completed)
	assert.Empty(t, gateway.failed)
	require.Len(t, gateway.thrown, 1)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), gateway.thrown[0].ErrorCode)
	assert.Equal(t, "Invalid job input", gateway.thrown[0].ErrorMessage)
	assert.Contains(t, gateway.thrown[0].Variables, "either answers or projectId is required")
	assert.NotContains(t, gateway.thrown[0].Variables, "parse input")
}
