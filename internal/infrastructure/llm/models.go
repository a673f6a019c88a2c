package llm

// Provider names an upstream language-model vendor
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
)

// Model is one entry of the model picker
type Model struct {
	ID         string   `json:"id"`
	Provider   Provider `json:"provider"`
	Name       string   `json:"name"`
	Multimodal bool     `json:"multimodal"`
}

var models = []Model{
	{ID: "claude-3-5-sonnet-latest", Provider: ProviderAnthropic, Name: "Claude 3.5 Sonnet", Multimodal: true},
	{ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic, Name: "Claude 3.5 Haiku"},
	{ID: "gpt-4o", Provider: ProviderOpenAI, Name: "GPT-4o", Multimodal: true},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, Name: "GPT-4o mini", Multimodal: true},
	{ID: "deepseek-chat", Provider: ProviderDeepSeek, Name: "DeepSeek V3"},
	{ID: "deepseek-coder", Provider: ProviderDeepSeek, Name: "DeepSeek Coder"},
}

// Models returns the registry in display order
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// LookupModel finds a model by id
func LookupModel(id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
