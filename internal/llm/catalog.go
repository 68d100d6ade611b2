// Package llm is the model gateway: a catalog of selectable models, the
// backends that serve them, and the post-processing applied to every
// completion before it reaches a transport.
package llm

// Backend names.
const (
	BackendAggregator = "aggregator"
	BackendGemini     = "gemini"
)

// DefaultModel is used until a user picks another model.
const DefaultModel = "yandexgpt"

// Model is one catalog entry.
type Model struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Backend string `json:"-"`
	// Hidden entries resolve in Lookup but are not offered for selection.
	Hidden bool `json:"-"`
}

var catalog = []Model{
	{ID: "yandexgpt/rc", Label: "YandexGPT 5.1 Pro", Backend: BackendAggregator},
	{ID: "yandexgpt-lite/latest", Label: "YandexGPT 5 Lite", Backend: BackendAggregator},
	{ID: "yandexgpt/latest", Label: "YandexGPT 5 Pro", Backend: BackendAggregator},
	{ID: "aliceai-llm/latest", Label: "Алиса AI", Backend: BackendAggregator},
	{ID: "gpt-oss-120b/latest", Label: "GPT OSS 120B", Backend: BackendAggregator},
	{ID: "gemma-3-27b-it/latest", Label: "Gemma 3 27B", Backend: BackendAggregator},
	{ID: "qwen3-235b-a22b-fp8/latest", Label: "Qwen3 235B", Backend: BackendAggregator},
	{ID: "llama-3.1-8b-instant", Label: "Llama 3.1 8B", Backend: BackendAggregator},
	{ID: "llama-3.3-70b-versatile", Label: "Llama 3.3 70B", Backend: BackendAggregator},
	{ID: "moonshotai/kimi-k2-instruct", Label: "Moonshot Kimi K2", Backend: BackendAggregator},
	{ID: "meta-llama/llama-4-scout-17b-16e-instruct", Label: "Llama 4 Scout 17B", Backend: BackendAggregator},
	{ID: "groq/compound-mini", Label: "Groq Compound Mini", Backend: BackendAggregator},
	{ID: "groq/compound", Label: "Groq Compound", Backend: BackendAggregator},
	{ID: "deepseek-reasoner", Label: "DeepSeek Reasoner", Backend: BackendAggregator},
	{ID: "gemini-1.5-flash-latest", Label: "Gemini 1.5 Flash", Backend: BackendGemini},
	{ID: DefaultModel, Label: "YandexGPT", Backend: BackendAggregator, Hidden: true},
}

// Models returns the selectable models in display order.
func Models() []Model {
	out := make([]Model, 0, len(catalog))
	for _, m := range catalog {
		if !m.Hidden {
			out = append(out, m)
		}
	}
	return out
}

// Lookup finds a model by id, hidden aliases included.
func Lookup(id string) (Model, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Label returns the display label for id, or id itself when unknown.
func Label(id string) string {
	if m, ok := Lookup(id); ok {
		return m.Label
	}
	return id
}
