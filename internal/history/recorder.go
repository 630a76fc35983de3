package history

import (
	"strings"

	"go.uber.org/zap"
)

const (
	historyFailureMessageConstant = "Unable to record repository history"
	repositoryLogFieldConstant    = "repository"
)

// RepositoryRecorder remembers repositories a command operated on.
type RepositoryRecorder interface {
	Remember(repository string) error
}

// Recorder remembers repositories in the store described by the current configuration.
type Recorder struct {
	ConfigurationProvider func() CommandConfiguration
}

// Remember opens the configured store and records repository in it.
func (recorder Recorder) Remember(repository string) error {
	configuration := DefaultCommandConfiguration()
	if recorder.ConfigurationProvider != nil {
		configuration = recorder.ConfigurationProvider()
	}
	store, storeError := OpenConfiguredStore(configuration)
	if storeError != nil {
		return storeError
	}
	return store.Remember(repository)
}

// RememberRepository records repository with recorder. A nil recorder or a blank
// repository is ignored; a failing recorder is logged and never fails the caller.
func RememberRepository(recorder RepositoryRecorder, logger *zap.Logger, repository string) {
	if recorder == nil || len(strings.TrimSpace(repository)) == 0 {
		return
	}
	if recordError := recorder.Remember(repository); recordError != nil {
		if logger == nil {
			logger = zap.NewNop()
		}
		logger.Warn(historyFailureMessageConstant, zap.String(repositoryLogFieldConstant, repository), zap.Error(recordError))
	}
}
