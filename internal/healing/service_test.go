package healing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreeduymaz/self-healing-ios/internal/config"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/match"
	"github.com/emreeduymaz/self-healing-ios/internal/store"
)

func testElements() []element.Element {
	return []element.Element{
		{
			ElementID:       "login_submit_button",
			XPath:           "//XCUIElementTypeButton[@name='loginButton']",
			AccessibilityID: "loginButton",
			ClassName:       "XCUIElementTypeButton",
			Name:            "loginButton",
			Screen:          "LoginScreen",
			ElementType:     "button",
		},
		{
			ElementID:       "username_field",
			XPath:           "//XCUIElementTypeTextField[@name='userNameField']",
			AccessibilityID: "userNameField",
			ClassName:       "XCUIElementTypeTextField",
			Name:            "userNameField",
			Screen:          "LoginScreen",
			ElementType:     "textfield",
		},
		{
			ElementID:       "settings_icon",
			XPath:           "//XCUIElementTypeImage[@name='settingsIcon']",
			AccessibilityID: "settingsIcon",
			ClassName:       "XCUIElementTypeImage",
			Name:            "settingsIcon",
			Screen:          "HomeScreen",
			ElementType:     "image",
		},
	}
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "elements.json")
	data, err := json.Marshal(element.Corpus{TestElements: testElements()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg := config.Default()
	cfg.Store.Path = path
	cfg.Store.CacheTTLMs = 0 // force reload per call so store writes are visible

	return New(cfg, store.New(cfg.Store)), path
}

func TestFindElementExactID(t *testing.T) {
	svc, _ := newTestService(t)

	outcome, err := svc.FindElement(element.Element{ElementID: "login_submit_button"})
	require.NoError(t, err)

	assert.Equal(t, match.KindExact, outcome.Kind)
	assert.Equal(t, 1.0, outcome.Score)
	require.NotNil(t, outcome.Matched)
	assert.Equal(t, "login_submit_button", outcome.Matched.ElementID)
	assert.False(t, outcome.AutoApplied)
}

func TestFindElementHealsTruncatedID(t *testing.T) {
	svc, _ := newTestService(t)

	outcome, err := svc.FindElement(element.Element{
		ElementID:       "login_submit_butto",
		AccessibilityID: "loginButton",
	})
	require.NoError(t, err)

	assert.Equal(t, match.KindSimilarity, outcome.Kind)
	assert.GreaterOrEqual(t, outcome.Score, 0.85)
	assert.True(t, outcome.AutoApplied)
	require.NotNil(t, outcome.Matched)
	assert.Equal(t, "login_submit_button", outcome.Matched.ElementID)
}

func TestFindElementAppliesReplacementToStore(t *testing.T) {
	svc, path := newTestService(t)

	// Seed a stale record carrying the query's id; healing replaces it with
	// the matched record.
	stale := element.Element{ElementID: "loginBtn", AccessibilityID: "oldLoginButton"}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var corpus element.Corpus
	require.NoError(t, json.Unmarshal(data, &corpus))
	corpus.TestElements = append(corpus.TestElements, stale)
	data, err = json.Marshal(corpus)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	outcome, err := svc.FindElement(element.Element{
		ElementID:       "loginBtn",
		AccessibilityID: "loginButton",
		Name:            "loginButton",
	})
	require.NoError(t, err)

	// The stale id exists, so step 1 returns it exactly; no healing needed.
	assert.Equal(t, match.KindExact, outcome.Kind)

	// Remove the stale record's id collision by querying an id the corpus
	// never held: the replacement is requested but is a store no-op.
	outcome, err = svc.FindElement(element.Element{
		ElementID:       "login_button_v2",
		AccessibilityID: "loginButton",
	})
	require.NoError(t, err)
	assert.Equal(t, match.KindSimilarity, outcome.Kind)
	assert.True(t, outcome.AutoApplied)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &corpus))
	assert.Len(t, corpus.TestElements, 4)
}

func TestFindElementNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	outcome, err := svc.FindElement(element.Element{Name: "zzzzz_unrelated"})
	require.NoError(t, err)

	assert.Equal(t, match.KindNotFound, outcome.Kind)
	assert.Equal(t, 0.0, outcome.Score)
	assert.Nil(t, outcome.Matched)
}

func TestFindElementEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t)

	outcome, err := svc.FindElement(element.Element{Screen: "LoginScreen"})
	require.NoError(t, err)
	assert.Equal(t, match.KindNotFound, outcome.Kind)
}

func TestFindElementCorpusLoadFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "missing.json")
	svc := New(cfg, store.New(cfg.Store))

	_, err := svc.FindElement(element.Element{ElementID: "x"})
	assert.Error(t, err)
}

func TestSuggestions(t *testing.T) {
	svc, _ := newTestService(t)

	suggestions, err := svc.Suggestions(element.Element{AccessibilityID: "loginButton"})
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	assert.LessOrEqual(t, len(suggestions), 5)
	assert.Equal(t, "login_submit_button", suggestions[0].Element.ElementID)
	assert.Equal(t, match.KindSimilarity, suggestions[0].Kind)
}

func TestSuggestionsUnsearchableQuery(t *testing.T) {
	svc, _ := newTestService(t)

	suggestions, err := svc.Suggestions(element.Element{Screen: "LoginScreen"})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestFindByField(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("accessibility id", func(t *testing.T) {
		matches, err := svc.FindByField(match.FieldAccessibilityID, "loginButton")
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "login_submit_button", matches[0].Element.ElementID)
		assert.Equal(t, 1.0, matches[0].Score)
	})

	t.Run("xpath", func(t *testing.T) {
		matches, err := svc.FindByField(match.FieldXPath, "//XCUIElementTypeButton[@name='loginButton']")
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "login_submit_button", matches[0].Element.ElementID)
	})

	t.Run("empty value yields empty result", func(t *testing.T) {
		matches, err := svc.FindByField(match.FieldClassName, "  ")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := svc.FindByField(match.Field("bogus"), "x")
		assert.Error(t, err)
	})
}

func TestUpdateElement(t *testing.T) {
	svc, path := newTestService(t)

	updated, err := svc.UpdateElement("settings_icon", element.Element{
		ElementID:       "settings_gear",
		AccessibilityID: "settingsGear",
	})
	require.NoError(t, err)
	assert.True(t, updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var corpus element.Corpus
	require.NoError(t, json.Unmarshal(data, &corpus))
	assert.Equal(t, "settings_gear", corpus.TestElements[2].ElementID)
}

func TestUpdateElementUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	updated, err := svc.UpdateElement("missing", element.Element{ElementID: "x"})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUpdateElementInvalidReplacement(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateElement("settings_icon", element.Element{Screen: "HomeScreen"})
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateElement(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Empty(t, svc.ValidateElement(&element.Element{ElementID: "x"}))
	assert.NotEmpty(t, svc.ValidateElement(&element.Element{Screen: "LoginScreen"}))
	assert.NotEmpty(t, svc.ValidateElement(nil))
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalElements)
	assert.Equal(t, 2, stats.ElementsByScreen["LoginScreen"])
	assert.Equal(t, 1, stats.ElementsByScreen["HomeScreen"])
	assert.Equal(t, 1, stats.ElementsByType["button"])
	assert.Equal(t, 0.75, stats.SimilarityThreshold)
	assert.True(t, stats.AutoUpdateEnabled)
	assert.Equal(t, 5, stats.MaxSuggestions)
}
