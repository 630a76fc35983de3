package secrets_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/box"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/secrets"
	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	testRepositoryConstant      = "owner/target"
	testKeyIdentifierConstant   = "key-123"
	testEnvironmentFileConstant = `# credentials
GEMINI_API_KEY=gemini-secret
export DISCORD_TOKEN="discord secret"

HF_TOKEN='hugging face'
`
)

type storedSecret struct {
	name           string
	encryptedValue string
	keyID          string
}

type stubSecretsClient struct {
	publicKey    githubcli.ActionsPublicKey
	publicKeyErr error
	putErrors    map[string]error
	stored       []storedSecret
	keyRequests  int
}

func (client *stubSecretsClient) GetActionsPublicKey(context.Context, string) (githubcli.ActionsPublicKey, error) {
	client.keyRequests++
	return client.publicKey, client.publicKeyErr
}

func (client *stubSecretsClient) PutActionsSecret(_ context.Context, _ string, secretName string, encryptedValue string, keyID string) error {
	if putError, failing := client.putErrors[secretName]; failing {
		return putError
	}
	client.stored = append(client.stored, storedSecret{name: secretName, encryptedValue: encryptedValue, keyID: keyID})
	return nil
}

func writeEnvironmentFile(testInstance *testing.T) string {
	testInstance.Helper()
	filePath := filepath.Join(testInstance.TempDir(), ".env")
	require.NoError(testInstance, os.WriteFile(filePath, []byte(testEnvironmentFileConstant), 0o600))
	return filePath
}

func TestLoadEnvironmentFile(testInstance *testing.T) {
	variables, loadError := secrets.LoadEnvironmentFile(writeEnvironmentFile(testInstance), nil)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, map[string]string{
		"GEMINI_API_KEY": "gemini-secret",
		"DISCORD_TOKEN":  "discord secret",
		"HF_TOKEN":       "hugging face",
	}, variables)
}

func TestLoadEnvironmentFileExpandsHomeDirectory(testInstance *testing.T) {
	environmentPath := writeEnvironmentFile(testInstance)
	homeDirectory := filepath.Dir(environmentPath)
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil })

	variables, loadError := secrets.LoadEnvironmentFile("~/.env", expander)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, variables, 3)
}

func TestLoadEnvironmentFileMissing(testInstance *testing.T) {
	_, loadError := secrets.LoadEnvironmentFile(filepath.Join(testInstance.TempDir(), "absent.env"), nil)
	var fileError secrets.EnvironmentFileError
	require.ErrorAs(testInstance, loadError, &fileError)
	require.ErrorIs(testInstance, loadError, os.ErrNotExist)
}

func TestLoadEnvironmentFileSkipsMalformedLines(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), ".env")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("just some note\nGEMINI_API_KEY=gemini-secret\nTOKEN=abc #def\n"), 0o600))

	variables, loadError := secrets.LoadEnvironmentFile(filePath, nil)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, map[string]string{
		"GEMINI_API_KEY": "gemini-secret",
		"TOKEN":          "abc #def",
	}, variables)
}

func TestParseEnvironment(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents string
		expected map[string]string
	}{
		{name: "inline_hash_kept", contents: "TOKEN=abc #def", expected: map[string]string{"TOKEN": "abc #def"}},
		{name: "line_without_assignment_skipped", contents: "just some note\nA=1", expected: map[string]string{"A": "1"}},
		{name: "comments_and_blank_lines", contents: "# heading\n\n  # indented\nA=1\n", expected: map[string]string{"A": "1"}},
		{name: "dollar_sign_literal", contents: "DB_PASSWORD=p@ss$word1", expected: map[string]string{"DB_PASSWORD": "p@ss$word1"}},
		{name: "double_quotes_literal", contents: `PATH_VALUE="$HOME/x\n"`, expected: map[string]string{"PATH_VALUE": `$HOME/x\n`}},
		{name: "single_quotes_stripped", contents: "NAME='hugging face'", expected: map[string]string{"NAME": "hugging face"}},
		{name: "mismatched_quotes_kept", contents: `NAME="open'`, expected: map[string]string{"NAME": `"open'`}},
		{name: "export_prefix", contents: "export DISCORD_TOKEN=discord", expected: map[string]string{"DISCORD_TOKEN": "discord"}},
		{name: "split_at_first_assignment", contents: "URL = https://example.com/?a=b", expected: map[string]string{"URL": "https://example.com/?a=b"}},
		{name: "trailing_backslash", contents: `WINDOWS_DIR=C:\temp\`, expected: map[string]string{"WINDOWS_DIR": `C:\temp\`}},
		{name: "empty_value", contents: "EMPTY=", expected: map[string]string{"EMPTY": ""}},
		{name: "empty_name_skipped", contents: "=value\nA=1", expected: map[string]string{"A": "1"}},
		{name: "invalid_name_skipped", contents: "my-key=value\nA=1", expected: map[string]string{"A": "1"}},
		{name: "carriage_returns", contents: "A=1\r\nB=2\rC=3", expected: map[string]string{"A": "1", "B": "2", "C": "3"}},
		{name: "byte_order_mark", contents: "\ufeffA=1", expected: map[string]string{"A": "1"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, secrets.ParseEnvironment(testCase.contents))
		})
	}
}

func TestFilter(testInstance *testing.T) {
	variables := map[string]string{"A": "1", "B": "2", "C": "3"}

	testCases := []struct {
		name     string
		include  []string
		exclude  []string
		expected map[string]string
	}{
		{name: "no_filters", expected: variables},
		{name: "include_only", include: []string{"A", " C "}, expected: map[string]string{"A": "1", "C": "3"}},
		{name: "exclude_only", exclude: []string{"B"}, expected: map[string]string{"A": "1", "C": "3"}},
		{name: "include_and_exclude", include: []string{"A", "B"}, exclude: []string{"A"}, expected: map[string]string{"B": "2"}},
		{name: "blank_include_ignored", include: []string{" "}, expected: variables},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, secrets.Filter(variables, testCase.include, testCase.exclude))
		})
	}
}

func TestSealRoundTrip(testInstance *testing.T) {
	publicKey, privateKey, generateError := box.GenerateKey(rand.Reader)
	require.NoError(testInstance, generateError)

	sealed, sealError := secrets.Seal(base64.StdEncoding.EncodeToString(publicKey[:]), "top secret", nil)
	require.NoError(testInstance, sealError)

	ciphertext, decodeError := base64.StdEncoding.DecodeString(sealed)
	require.NoError(testInstance, decodeError)
	opened, ok := box.OpenAnonymous(nil, ciphertext, publicKey, privateKey)
	require.True(testInstance, ok)
	require.Equal(testInstance, "top secret", string(opened))

	_, invalidKeyError := secrets.Seal("not-base64!", "value", nil)
	require.Error(testInstance, invalidKeyError)
	_, shortKeyError := secrets.Seal(base64.StdEncoding.EncodeToString([]byte("short")), "value", nil)
	require.Error(testInstance, shortKeyError)
}

func TestServiceSync(testInstance *testing.T) {
	publicKey, privateKey, generateError := box.GenerateKey(rand.Reader)
	require.NoError(testInstance, generateError)
	encodedPublicKey := base64.StdEncoding.EncodeToString(publicKey[:])

	variables := map[string]string{"GEMINI_API_KEY": "gemini-secret", "DISCORD_TOKEN": "discord secret", "HF_TOKEN": "hugging face"}

	testInstance.Run("uploads_sealed_values", func(testInstance *testing.T) {
		client := &stubSecretsClient{
			publicKey: githubcli.ActionsPublicKey{KeyID: testKeyIdentifierConstant, Key: encodedPublicKey},
			putErrors: map[string]error{"HF_TOKEN": errors.New("gh: Forbidden (HTTP 403) " + strings.Repeat("x", 400))},
		}
		service, serviceError := secrets.NewService(zap.NewNop(), client, nil)
		require.NoError(testInstance, serviceError)

		result, syncError := service.Sync(context.Background(), secrets.Options{Repository: testRepositoryConstant, Variables: variables})
		require.NoError(testInstance, syncError)
		require.Equal(testInstance, []string{"DISCORD_TOKEN", "GEMINI_API_KEY"}, result.Updated)
		require.Len(testInstance, result.Failed, 1)
		require.Equal(testInstance, "HF_TOKEN", result.Failed[0].Name)
		require.Len(testInstance, []rune(result.Failed[0].Message), secrets.FailurePreviewLength)

		require.Len(testInstance, client.stored, 2)
		for _, stored := range client.stored {
			require.Equal(testInstance, testKeyIdentifierConstant, stored.keyID)
			ciphertext, decodeError := base64.StdEncoding.DecodeString(stored.encryptedValue)
			require.NoError(testInstance, decodeError)
			opened, ok := box.OpenAnonymous(nil, ciphertext, publicKey, privateKey)
			require.True(testInstance, ok)
			require.Equal(testInstance, variables[stored.name], string(opened))
		}
	})

	testInstance.Run("public_key_failure_fails_every_secret", func(testInstance *testing.T) {
		client := &stubSecretsClient{publicKeyErr: errors.New("gh: Not Found (HTTP 404)")}
		service, serviceError := secrets.NewService(nil, client, nil)
		require.NoError(testInstance, serviceError)

		result, syncError := service.Sync(context.Background(), secrets.Options{Repository: testRepositoryConstant, Variables: variables})
		require.NoError(testInstance, syncError)
		require.Empty(testInstance, result.Updated)
		require.Len(testInstance, result.Failed, 3)
		for _, failure := range result.Failed {
			require.Contains(testInstance, failure.Message, "failed to retrieve repository public key")
		}
		require.Empty(testInstance, client.stored)
	})

	testInstance.Run("dry_run_lists_secrets", func(testInstance *testing.T) {
		client := &stubSecretsClient{}
		service, serviceError := secrets.NewService(nil, client, nil)
		require.NoError(testInstance, serviceError)

		result, syncError := service.Sync(context.Background(), secrets.Options{Repository: testRepositoryConstant, Variables: variables, DryRun: true})
		require.NoError(testInstance, syncError)
		require.Equal(testInstance, []string{"DISCORD_TOKEN", "GEMINI_API_KEY", "HF_TOKEN"}, result.Planned)
		require.Zero(testInstance, client.keyRequests)
	})

	testInstance.Run("normalizes_clone_url", func(testInstance *testing.T) {
		service, serviceError := secrets.NewService(nil, &stubSecretsClient{}, nil)
		require.NoError(testInstance, serviceError)

		result, syncError := service.Sync(context.Background(), secrets.Options{Repository: "git@github.com:owner/target.git", Variables: variables, DryRun: true})
		require.NoError(testInstance, syncError)
		require.Equal(testInstance, testRepositoryConstant, result.Repository)

		_, invalidError := service.Sync(context.Background(), secrets.Options{Repository: "not a repository", Variables: variables})
		var inputError githubcli.InvalidInputError
		require.ErrorAs(testInstance, invalidError, &inputError)
	})

	testInstance.Run("requires_repository", func(testInstance *testing.T) {
		service, serviceError := secrets.NewService(nil, &stubSecretsClient{}, nil)
		require.NoError(testInstance, serviceError)
		_, syncError := service.Sync(context.Background(), secrets.Options{Variables: variables})
		require.ErrorIs(testInstance, syncError, secrets.ErrRepositoryRequired)
	})
}

func TestNewServiceRequiresClient(testInstance *testing.T) {
	service, serviceError := secrets.NewService(nil, nil, nil)
	require.Nil(testInstance, service)
	require.ErrorIs(testInstance, serviceError, secrets.ErrClientNotConfigured)
}
