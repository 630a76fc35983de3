package utils

import "context"

type executionMetadataContextKey struct{}

// ExecutionMetadata records how the running command was configured.
type ExecutionMetadata struct {
	ConfigurationFilePath string
	GitHubHost            string
}

// WithExecutionMetadata attaches execution metadata to the command context.
func WithExecutionMetadata(parentContext context.Context, metadata ExecutionMetadata) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, executionMetadataContextKey{}, metadata)
}

// ExecutionMetadataFromContext returns the metadata attached by WithExecutionMetadata.
func ExecutionMetadataFromContext(executionContext context.Context) (ExecutionMetadata, bool) {
	if executionContext == nil {
		return ExecutionMetadata{}, false
	}
	metadata, available := executionContext.Value(executionMetadataContextKey{}).(ExecutionMetadata)
	return metadata, available
}
