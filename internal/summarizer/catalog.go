package summarizer

import "github.com/localrivet/distill/internal/engine"

// EngineInfo describes an engine for clients choosing one.
type EngineInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	MaxInputLength int      `json:"max_input_length"`
	Languages      []string `json:"languages"`
	BestFor        string   `json:"best_for"`
	RequiresAPIKey bool     `json:"requires_api_key"`
	Remote         bool     `json:"remote"`
	ModelID        string   `json:"model_id,omitempty"`
}

// MethodInfo describes a summarization method.
type MethodInfo struct {
	ID          Method `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Speed       string `json:"speed"`
	Quality     string `json:"quality"`
}

// CatalogInfo lists the supported engines and methods.
type CatalogInfo struct {
	Engines []EngineInfo `json:"models"`
	Methods []MethodInfo `json:"methods"`
}

var engineCatalog = []EngineInfo{
	{
		ID:             engine.Bart,
		Name:           "BART",
		Description:    "Facebook's BART model for abstractive summarization",
		Type:           "abstractive",
		MaxInputLength: 1024,
		Languages:      []string{"english"},
		BestFor:        "General purpose summarization",
	},
	{
		ID:             engine.T5,
		Name:           "T5",
		Description:    "Google's T5 model for text-to-text tasks",
		Type:           "abstractive",
		MaxInputLength: 512,
		Languages:      []string{"english"},
		BestFor:        "Short to medium texts",
	},
	{
		ID:             engine.Pegasus,
		Name:           "PEGASUS",
		Description:    "Google's PEGASUS model optimized for summarization",
		Type:           "abstractive",
		MaxInputLength: 1024,
		Languages:      []string{"english"},
		BestFor:        "Long documents and news articles",
	},
	{
		ID:             engine.OpenAI,
		Name:           "OpenAI GPT",
		Description:    "OpenAI's GPT models for high-quality summarization",
		Type:           "abstractive",
		MaxInputLength: 4096,
		Languages:      []string{"english", "spanish", "french", "german", "chinese"},
		BestFor:        "High-quality, nuanced summaries",
		RequiresAPIKey: true,
		Remote:         true,
	},
	{
		ID:             engine.Cohere,
		Name:           "Cohere",
		Description:    "Cohere's command model for summarization",
		Type:           "abstractive",
		MaxInputLength: 4096,
		Languages:      []string{"english"},
		BestFor:        "Business and technical documents",
		RequiresAPIKey: true,
		Remote:         true,
	},
}

var methodCatalog = []MethodInfo{
	{
		ID:          MethodExtractive,
		Name:        "Extractive",
		Description: "Selects important sentences from original text",
		Speed:       "Fast",
		Quality:     "Good",
	},
	{
		ID:          MethodAbstractive,
		Name:        "Abstractive",
		Description: "Generates new sentences that capture the meaning",
		Speed:       "Medium",
		Quality:     "Excellent",
	},
	{
		ID:          MethodHybrid,
		Name:        "Hybrid",
		Description: "Combines extractive and abstractive methods",
		Speed:       "Medium",
		Quality:     "Excellent",
	},
}

// Catalog returns a copy of the engine and method catalogue.
func Catalog() CatalogInfo {
	engines := make([]EngineInfo, len(engineCatalog))
	for i, e := range engineCatalog {
		e.Languages = append([]string(nil), e.Languages...)
		if id, ok := engine.ModelID(e.ID); ok {
			e.ModelID = id
		}
		engines[i] = e
	}
	return CatalogInfo{
		Engines: engines,
		Methods: append([]MethodInfo(nil), methodCatalog...),
	}
}
