package githubcli

import (
	"context"
	"fmt"
	"strings"
)

const (
	publicKeyEndpointTemplateConstant = "repos/%s/actions/secrets/public-key"
	secretEndpointTemplateConstant    = "repos/%s/actions/secrets/%s"
	secretNameFieldNameConstant       = "secret_name"
	encryptedValueFieldNameConstant   = "encrypted_value"
	keyIdentifierFieldNameConstant    = "key_id"
	getPublicKeyOperationNameConstant = OperationName("GetActionsPublicKey")
	putSecretOperationNameConstant    = OperationName("PutActionsSecret")
)

// ActionsPublicKey is the repository key used to seal Actions secrets. Key is base64 encoded.
type ActionsPublicKey struct {
	KeyID string
	Key   string
}

// GetActionsPublicKey fetches the repository public key for Actions secrets.
func (client *Client) GetActionsPublicKey(executionContext context.Context, repository string) (ActionsPublicKey, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return ActionsPublicKey{}, repositoryError
	}

	var response struct {
		KeyID string `json:"key_id"`
		Key   string `json:"key"`
	}

	endpoint := fmt.Sprintf(publicKeyEndpointTemplateConstant, repositoryIdentifier)
	if _, invocationError := client.invokeAPI(executionContext, getPublicKeyOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		return ActionsPublicKey{}, invocationError
	}

	return ActionsPublicKey{KeyID: response.KeyID, Key: response.Key}, nil
}

// PutActionsSecret creates or updates an Actions secret with an already encrypted value.
func (client *Client) PutActionsSecret(executionContext context.Context, repository string, secretName string, encryptedValue string, keyID string) error {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return repositoryError
	}
	trimmedName, nameError := requireValue(secretNameFieldNameConstant, secretName)
	if nameError != nil {
		return nameError
	}
	if len(strings.TrimSpace(encryptedValue)) == 0 {
		return InvalidInputError{FieldName: encryptedValueFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedKeyID, keyError := requireValue(keyIdentifierFieldNameConstant, keyID)
	if keyError != nil {
		return keyError
	}

	payload := struct {
		EncryptedValue string `json:"encrypted_value"`
		KeyID          string `json:"key_id"`
	}{EncryptedValue: encryptedValue, KeyID: trimmedKeyID}

	endpoint := fmt.Sprintf(secretEndpointTemplateConstant, repositoryIdentifier, escapePath(trimmedName))
	_, invocationError := client.invokeAPI(executionContext, putSecretOperationNameConstant, httpMethodPutConstant, endpoint, payload, nil)
	return invocationError
}
