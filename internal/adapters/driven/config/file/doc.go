// Package file keeps pdfrag's user-editable state under the config
// directory: config.toml through ConfigStore and answer templates through
// PromptStore.
package file
