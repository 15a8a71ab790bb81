// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Reads a PDF into page records
//   - Normaliser: Cleans page text before chunking
//   - PostProcessorPipeline: Splits pages into chunks
//   - EmbeddingService: Maps text to vectors
//   - VectorStore: Namespaced vector persistence and similarity search
//   - LLMService: Generates answers from a rendered prompt
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentArchive: Keeps uploaded originals. Without it, nothing is archived.
//   - PromptStore: Custom prompt templates. Without it, built-in defaults are used.
//   - Clock: Defaults to the system clock.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or normaliser package
package driven
