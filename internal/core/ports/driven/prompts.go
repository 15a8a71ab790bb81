package driven

// PromptAnswer names the answer template. It must contain the {context}
// and {query} placeholders.
const PromptAnswer = "answer"

// PromptStore serves named prompt templates.
type PromptStore interface {
	// Load returns the template for name. Stores fall back to the built-in
	// template when a customised one is unusable.
	Load(name string) (string, error)

	// Reload forgets cached templates.
	Reload()
}

// PromptStoreAware services accept a PromptStore after construction and
// use built-in templates until one is set.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
