package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/distill/internal/engine"
)

func TestCatalogListsEveryEngineAndMethod(t *testing.T) {
	cat := Catalog()

	ids := make([]string, len(cat.Engines))
	for i, e := range cat.Engines {
		ids[i] = e.ID
		assert.Equal(t, engine.IsRemote(e.ID), e.Remote, e.ID)
		assert.Equal(t, e.Remote, e.RequiresAPIKey, e.ID)
		assert.NotEmpty(t, e.Languages, e.ID)
	}
	assert.Equal(t, engine.Names(), ids)

	require.Len(t, cat.Methods, len(Methods()))
	for i, m := range cat.Methods {
		assert.Equal(t, Methods()[i], m.ID)
	}
}

func TestCatalogModelIDs(t *testing.T) {
	for _, e := range Catalog().Engines {
		if e.Remote {
			assert.Empty(t, e.ModelID, e.ID)
			continue
		}
		assert.NotEmpty(t, e.ModelID, e.ID)
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	first := Catalog()
	first.Engines[0].Languages[0] = "klingon"
	first.Methods[0].Name = "changed"

	second := Catalog()
	assert.Equal(t, "english", second.Engines[0].Languages[0])
	assert.Equal(t, "Extractive", second.Methods[0].Name)
}
