// Package cli constructs the gemini-actions-lab command-line interface. It wires
// the Cobra command hierarchy to the Viper-backed configuration loader and the
// zap logger factory, and registers the workflows, docs, secrets, branches and
// repos command groups.
package cli
