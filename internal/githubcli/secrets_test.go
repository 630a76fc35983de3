package githubcli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/execshell"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

func TestActionsSecretOperations(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
		return execshell.ExecutionResult{StandardOutput: `{"key_id":"key-1","key":"a2V5"}`}, nil
	}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	publicKey, keyError := client.GetActionsPublicKey(context.Background(), testRepositoryIdentifierConstant)
	require.NoError(testInstance, keyError)
	require.Equal(testInstance, githubcli.ActionsPublicKey{KeyID: "key-1", Key: "a2V5"}, publicKey)

	require.NoError(testInstance, client.PutActionsSecret(context.Background(), testRepositoryIdentifierConstant, "API_KEY", "sealed", publicKey.KeyID))
	secretDetails := executor.recordedDetails[1]
	require.Equal(testInstance, "repos/owner/example/actions/secrets/API_KEY", secretDetails.Arguments[1])
	payload := decodePayload(testInstance, secretDetails)
	require.Equal(testInstance, "sealed", payload["encrypted_value"])
	require.Equal(testInstance, "key-1", payload["key_id"])

	missingValueError := client.PutActionsSecret(context.Background(), testRepositoryIdentifierConstant, "API_KEY", "", "key-1")
	require.IsType(testInstance, githubcli.InvalidInputError{}, missingValueError)
}
