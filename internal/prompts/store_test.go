package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreEffectiveReturnsBase(t *testing.T) {
	base := PromptConfig{CompanyName: "Acme"}
	store := NewStore(base, zap.NewNop())
	assert.Equal(t, base, store.Effective())
}

func TestStoreApplyPatchMerges(t *testing.T) {
	store := NewStore(PromptConfig{
		CompanyName: "Acme",
		ICP:         &ICPConfig{TargetIndustries: []string{"SaaS"}},
	}, zap.NewNop())

	merged, err := store.ApplyPatch(PromptConfig{
		ServicesDescription: "Consulting",
		ICP:                 &ICPConfig{TargetRoles: []string{"CTO"}},
	})
	require.NoError(t, err)

	// Untouched fields survive, patched fields land
	assert.Equal(t, "Acme", merged.CompanyName)
	assert.Equal(t, "Consulting", merged.ServicesDescription)
	assert.Equal(t, []string{"SaaS"}, merged.ICP.TargetIndustries)
	assert.Equal(t, []string{"CTO"}, merged.ICP.TargetRoles)
	assert.Equal(t, merged, store.Effective())
}

func TestStoreApplyPatchStacks(t *testing.T) {
	store := NewStore(PromptConfig{}, zap.NewNop())

	_, err := store.ApplyPatch(PromptConfig{CompanyName: "Acme"})
	require.NoError(t, err)
	_, err = store.ApplyPatch(PromptConfig{ServicesDescription: "Consulting"})
	require.NoError(t, err)

	effective := store.Effective()
	assert.Equal(t, "Acme", effective.CompanyName)
	assert.Equal(t, "Consulting", effective.ServicesDescription)
}

func TestStoreApplyPatchRejectionLeavesPrior(t *testing.T) {
	store := NewStore(PromptConfig{CompanyName: "Acme"}, zap.NewNop())
	_, err := store.ApplyPatch(PromptConfig{ServicesDescription: "Consulting"})
	require.NoError(t, err)
	before := store.Effective()

	_, err = store.ApplyPatch(PromptConfig{QualifyingQuestions: []string{"ok", "  "}})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "qualifying_questions", verr.Field)

	assert.Equal(t, before, store.Effective())
}

func TestStoreReset(t *testing.T) {
	base := PromptConfig{CompanyName: "Acme"}
	store := NewStore(base, zap.NewNop())
	_, err := store.ApplyPatch(PromptConfig{CompanyName: "Other"})
	require.NoError(t, err)

	store.Reset()
	assert.Equal(t, base, store.Effective())
}

func TestStoreReplaceValidates(t *testing.T) {
	store := NewStore(PromptConfig{CompanyName: "Acme"}, zap.NewNop())

	_, err := store.Replace(PromptConfig{ResearchFocusAreas: []string{""}})
	require.Error(t, err)
	assert.Equal(t, "Acme", store.Effective().CompanyName)

	replaced, err := store.Replace(PromptConfig{CompanyName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, replaced, store.Effective())
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"company_name": "Acme",
		"icp": {"target_industries": ["SaaS"]}
	}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.CompanyName)
	assert.Equal(t, []string{"SaaS"}, cfg.ICP.TargetIndustries)
}

func TestLoadInlineJSONEnv(t *testing.T) {
	t.Setenv("PROMPT_CONFIG_JSON", `{"company_name": "FromEnv"}`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.CompanyName)
}

func TestLoadExplicitPathBeatsEnv(t *testing.T) {
	t.Setenv("PROMPT_CONFIG_JSON", `{"company_name": "FromEnv"}`)
	path := filepath.Join(t.TempDir(), "prompt_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"company_name": "FromFile"}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FromFile", cfg.CompanyName)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"qualifying_questions": ["", "x"]}`), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOrEmptyFallsBack(t *testing.T) {
	cfg := LoadOrEmpty(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	assert.True(t, cfg.IsEmpty())
}

func TestPromptConfigIsEmpty(t *testing.T) {
	assert.True(t, PromptConfig{}.IsEmpty())
	assert.True(t, PromptConfig{CompanyName: "  "}.IsEmpty())
	assert.True(t, PromptConfig{ICP: &ICPConfig{}}.IsEmpty())
	assert.False(t, PromptConfig{CustomInstructions: "x"}.IsEmpty())
	assert.False(t, PromptConfig{ICP: &ICPConfig{GeographicFocus: []string{"EU"}}}.IsEmpty())
}
