package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/law-makers/dashscrape/internal/config"
	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// isolate gives the test an empty working and home directory and a clean environment
func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("CI", "")
	t.Setenv("CODESPACES", "")
	for _, name := range []string{"BASE_URL", "USERNAME", "PASSWORD", "ROUTES", "HEADLESS", "TIMEOUT", "OUTPUT", "MODE", "CONFIG", "LOG_LEVEL"} {
		t.Setenv(config.EnvPrefix+name, "")
	}
	return dir
}

// resetFlags restores every flag of cmd and its children to its default
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	closeApp()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMergeCommand(t *testing.T) {
	dir := isolate(t)
	ref := writeFile(t, dir, "en.json", `[
		{"name": "Lamp Hours", "url": "status/Lamp", "value": null},
		{"name": "Fan 1 Speed", "url": "/", "value": "old"}
	]`)
	lookup := writeFile(t, dir, "status_data.json", `[{"label": "Lamp Hours", "value": "1234"}, {"label": "Fan 1", "value": "OK"}]`)
	out := filepath.Join(dir, "filled.json")

	stdout, _, err := execute(t, "", "merge", "--reference", ref, "--lookup", lookup, "-o", out, "--base-url", "http://192.168.230.169/")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved 2 records")

	var records []models.Record
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "1234", *records[0].Value)
	assert.Equal(t, "http://192.168.230.169/status/Lamp", *records[0].URL)
	assert.Equal(t, "old", *records[1].Value, "exact matching leaves other records alone")
}

func TestMergeCommand_Partial(t *testing.T) {
	dir := isolate(t)
	ref := writeFile(t, dir, "en.json", `[{"name": "Fan 1 Speed"}]`)
	lookup := writeFile(t, dir, "status_data.json", `[{"label": "Fan", "value": "x"}, {"label": "Fan 1", "value": "OK"}]`)
	out := filepath.Join(dir, "filled.json")

	_, _, err := execute(t, "", "merge", "--reference", ref, "--lookup", lookup, "--partial", "-o", out)
	require.NoError(t, err)

	var records []models.Record
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Equal(t, "OK", *records[0].Value)
}

func TestMergeCommand_MissingReferenceWritesNothing(t *testing.T) {
	dir := isolate(t)
	lookup := writeFile(t, dir, "status_data.json", `[]`)
	out := filepath.Join(dir, "filled.json")

	_, _, err := execute(t, "", "merge", "--reference", filepath.Join(dir, "missing.json"), "--lookup", lookup, "-o", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, merge.ErrMalformedInput)
	assert.NoFileExists(t, out)
}

func TestFillReference_FromScrapedItems(t *testing.T) {
	dir := isolate(t)
	ref := writeFile(t, dir, "en.json", `[{"name": "Lamp Hours", "url": "status/Lamp"}, {"name": "Fan 1 Speed"}]`)
	out := filepath.Join(dir, "en_filled.json")
	items := []models.StatusItem{{Label: "Lamp Hours", Value: "1234"}, {Label: "Fan 1", Value: "OK"}}

	n, err := fillReference(ref, merge.FromStatusItems(items), "http://192.168.0.20/", true, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var records []models.Record
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "1234", *records[0].Value)
	assert.Equal(t, "http://192.168.0.20/status/Lamp", *records[0].URL)
	assert.Equal(t, "OK", *records[1].Value)

	_, err = fillReference(filepath.Join(dir, "missing.json"), merge.Lookup{}, "", false, filepath.Join(dir, "none.json"))
	assert.ErrorIs(t, err, merge.ErrMalformedInput)
	assert.NoFileExists(t, filepath.Join(dir, "none.json"))
}

func TestMergeCommand_RequiresFlags(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "", "merge")
	assert.Error(t, err)
}

func TestTranslationsCommand(t *testing.T) {
	dir := isolate(t)
	ts := writeFile(t, dir, "EN.ts", `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1">
<context>
  <name>Status</name>
  <message>
    <source>Lamp Hours</source>
    <extracomment>2-status/Lamp</extracomment>
  </message>
</context>
</TS>`)
	out := filepath.Join(dir, "processed.json")

	// the lookup file is absent, so values stay empty
	_, _, err := execute(t, "", "translations", "--ts", ts, "--lookup", filepath.Join(dir, "none.json"), "-o", out, "--base-url", "http://10.0.0.1/")
	require.NoError(t, err)

	var entries []models.TranslationEntry
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Lamp Hours", entries[0].Name)
	assert.Equal(t, "2", *entries[0].UserLevel)
	assert.Equal(t, "http://10.0.0.1/status/Lamp", *entries[0].URL)
	assert.Nil(t, entries[0].Value)
}

func TestTranslationsCommand_MissingTSFails(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "processed.json")

	_, _, err := execute(t, "", "translations", "--ts", filepath.Join(dir, "none.ts"), "-o", out)
	assert.Error(t, err)
	assert.NoFileExists(t, out)
}

const savedPage = `<html><head><title>Dashboard</title></head><body>
<h1>Lamp Status</h1>
<div class="status-item"><span class="status-item-label">Lamp Hours</span><span class="status-item-value">1234</span></div>
</body></html>`

func TestExtractCommand_Context(t *testing.T) {
	dir := isolate(t)
	page := writeFile(t, dir, "lamp.html", savedPage)

	stdout, _, err := execute(t, "", "extract", page)
	require.NoError(t, err)

	var contexts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &contexts))
	require.Len(t, contexts, 1)
	assert.Equal(t, "Lamp Status", contexts[0]["title"])
	assert.True(t, strings.HasPrefix(contexts[0]["url"].(string), "file://"))
	assert.Contains(t, stdout, `"Lamp Hours"`)
}

func TestExtractCommand_ItemsToFile(t *testing.T) {
	dir := isolate(t)
	page := writeFile(t, dir, "lamp.html", savedPage)
	empty := writeFile(t, dir, "empty.html", "<html><body><p>Loading</p></body></html>")
	out := filepath.Join(dir, "items.json")

	_, _, err := execute(t, "", "extract", "--items", "-o", out, page, empty)
	require.NoError(t, err)

	var items []models.StatusItem
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Equal(t, []models.StatusItem{{Label: "Lamp Hours", Value: "1234"}}, items)
}

func TestCredentialsCommands(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "secret\n", "credentials", "set", "--user", "admin", "--base-url", "http://10.0.0.1/")
	require.NoError(t, err)

	stdout, _, err := execute(t, "", "credentials", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "admin@10.0.0.1")

	_, _, err = execute(t, "", "credentials", "delete", "--user", "admin", "--base-url", "http://10.0.0.1/")
	require.NoError(t, err)

	stdout, _, err = execute(t, "", "credentials", "delete", "--user", "admin", "--base-url", "http://10.0.0.1/")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No password stored")

	stdout, _, err = execute(t, "", "credentials", "list")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "admin@10.0.0.1")
}

func TestHelpListsCommands(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"scrape", "merge", "translations", "extract", "credentials", "login"} {
		assert.Contains(t, stdout, name)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n• keep this bullet as is", 9)
	assert.Equal(t, "one two\nthree\nfour\n\n• keep this bullet as is", got)
}
