package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	catalogPathRequiredMessageConstant            = "preset catalog path must be provided"
	catalogMissingReasonConstant                  = "preset catalog not found"
	catalogUnreadableReasonConstant               = "preset catalog unreadable"
	catalogInvalidReasonConstant                  = "preset catalog invalid"
	catalogEmptyReasonConstant                    = "preset catalog defines no presets"
	presetNameRequiredReasonConstant              = "preset names must be non-empty"
	duplicatePresetReasonTemplateConstant         = "duplicate preset %s"
	emptyPresetReasonTemplateConstant             = "preset %s lists no workflows"
	configurationUnavailableTemplateConstant      = "workflow presets unavailable (%s): %s"
	configurationUnavailableCauseTemplateConstant = "workflow presets unavailable (%s): %s: %s"
	unknownPresetTemplateConstant                 = "unknown preset '%s'. Available presets: %s"
	availablePresetSeparatorConstant              = ", "
	embeddedCatalogSourceConstant                 = "embedded"
	missingDescriptionConstant                    = "No description"
)

//go:embed presets.yaml
var embeddedCatalog []byte

// ErrCatalogPathRequired indicates an empty external catalog path.
var ErrCatalogPathRequired = errors.New(catalogPathRequiredMessageConstant)

// ConfigurationUnavailableError reports a preset catalog that cannot be used.
type ConfigurationUnavailableError struct {
	Source string
	Reason string
	Cause  error
}

// Error describes why the catalog is unavailable.
func (unavailableError ConfigurationUnavailableError) Error() string {
	if unavailableError.Cause == nil {
		return fmt.Sprintf(configurationUnavailableTemplateConstant, unavailableError.Source, unavailableError.Reason)
	}
	return fmt.Sprintf(configurationUnavailableCauseTemplateConstant, unavailableError.Source, unavailableError.Reason, unavailableError.Cause)
}

// Unwrap exposes the read or parse failure.
func (unavailableError ConfigurationUnavailableError) Unwrap() error {
	return unavailableError.Cause
}

// UnknownPresetError reports a preset name absent from the catalog.
type UnknownPresetError struct {
	Name      string
	Available []string
}

// Error lists the available presets.
func (unknownError UnknownPresetError) Error() string {
	return fmt.Sprintf(unknownPresetTemplateConstant, unknownError.Name, strings.Join(unknownError.Available, availablePresetSeparatorConstant))
}

// Preset is a named bundle of template files.
type Preset struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	UseRemote   bool     `yaml:"use_remote"`
	Workflows   []string `yaml:"workflows"`
	Prompts     []string `yaml:"prompts"`
	Agents      []string `yaml:"agents"`
}

// Groups converts the preset into planner groups: workflows, then prompts, then agents.
func (preset Preset) Groups() []templatesync.NamedFileGroup {
	groups := []templatesync.NamedFileGroup{templatesync.WorkflowGroup(preset.Workflows, preset.UseRemote)}
	if len(preset.Prompts) > 0 {
		groups = append(groups, templatesync.DirectoryGroup(preset.Prompts, templatesync.PromptsDirectory))
	}
	if len(preset.Agents) > 0 {
		groups = append(groups, templatesync.DirectoryGroup(preset.Agents, templatesync.AgentsDirectory))
	}
	return groups
}

// Summary pairs a preset name with its description.
type Summary struct {
	Name        string
	Description string
}

// Catalog indexes presets by name.
type Catalog struct {
	presets map[string]Preset
}

type catalogDocument struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultCatalog returns the presets compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return parseCatalog(embeddedCatalogSourceConstant, embeddedCatalog)
}

// LoadCatalog reads presets from an external YAML file.
func LoadCatalog(filePath string) (Catalog, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Catalog{}, ErrCatalogPathRequired
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		reason := catalogUnreadableReasonConstant
		if errors.Is(readError, fs.ErrNotExist) {
			reason = catalogMissingReasonConstant
		}
		return Catalog{}, ConfigurationUnavailableError{Source: trimmedPath, Reason: reason, Cause: readError}
	}

	return parseCatalog(trimmedPath, contentBytes)
}

func parseCatalog(source string, contentBytes []byte) (Catalog, error) {
	var document catalogDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return Catalog{}, ConfigurationUnavailableError{Source: source, Reason: catalogInvalidReasonConstant, Cause: unmarshalError}
	}
	if len(document.Presets) == 0 {
		return Catalog{}, ConfigurationUnavailableError{Source: source, Reason: catalogEmptyReasonConstant}
	}

	catalog := Catalog{presets: make(map[string]Preset, len(document.Presets))}
	for _, preset := range document.Presets {
		preset.Name = strings.TrimSpace(preset.Name)
		if len(preset.Name) == 0 {
			return Catalog{}, ConfigurationUnavailableError{Source: source, Reason: presetNameRequiredReasonConstant}
		}
		if _, duplicate := catalog.presets[preset.Name]; duplicate {
			return Catalog{}, ConfigurationUnavailableError{Source: source, Reason: fmt.Sprintf(duplicatePresetReasonTemplateConstant, preset.Name)}
		}
		if len(preset.Workflows) == 0 {
			return Catalog{}, ConfigurationUnavailableError{Source: source, Reason: fmt.Sprintf(emptyPresetReasonTemplateConstant, preset.Name)}
		}
		if len(strings.TrimSpace(preset.Description)) == 0 {
			preset.Description = missingDescriptionConstant
		}
		catalog.presets[preset.Name] = preset
	}

	return catalog, nil
}

// Lookup returns the named preset.
func (catalog Catalog) Lookup(name string) (Preset, error) {
	preset, exists := catalog.presets[strings.TrimSpace(name)]
	if !exists {
		return Preset{}, UnknownPresetError{Name: name, Available: catalog.Names()}
	}
	return preset, nil
}

// Names returns the preset names in lexical order.
func (catalog Catalog) Names() []string {
	names := make([]string, 0, len(catalog.presets))
	for name := range catalog.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summaries lists presets in lexical order.
func (catalog Catalog) Summaries() []Summary {
	summaries := make([]Summary, 0, len(catalog.presets))
	for _, name := range catalog.Names() {
		summaries = append(summaries, Summary{Name: name, Description: catalog.presets[name].Description})
	}
	return summaries
}
