package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/law-makers/dashscrape/internal/extract"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser serves a fixed page per route and fails routes listed in broken
type fakeBrowser struct {
	pages   map[string]string
	broken  map[string]error
	current string
	visited []string
}

func (f *fakeBrowser) GoRoute(ctx context.Context, route string) error {
	f.visited = append(f.visited, route)
	if err := f.broken[route]; err != nil {
		return err
	}
	f.current = route
	return nil
}

func (f *fakeBrowser) DismissOverlays(ctx context.Context) int { return 0 }

func (f *fakeBrowser) Snapshot(ctx context.Context) (string, string, error) {
	return "http://localhost:4200/" + f.current, f.pages[f.current], nil
}

func (f *fakeBrowser) Locators(pairs []extract.SelectorPair) []extract.LocatorPair {
	page, err := extract.NewPage("", f.pages[f.current])
	if err != nil {
		panic(err)
	}
	return extract.DocPairs(page.Doc, pairs)
}

func statusPage(pairs ...string) string {
	html := "<html><body><h1>Status</h1>"
	for i := 0; i+1 < len(pairs); i += 2 {
		html += fmt.Sprintf(`<div class="status-item"><span class="status-item-label">%s</span><span class="status-item-value">%s</span></div>`, pairs[i], pairs[i+1])
	}
	return html + "</body></html>"
}

func newFake() *fakeBrowser {
	return &fakeBrowser{
		pages: map[string]string{
			"#/status/Lamp":  statusPage("Lamp Hours", "1234", "Lamp Mode", "Normal"),
			"#/status/Fans":  statusPage("Fan 1", "1500 rpm"),
			"#/status/Empty": "<html><body><p>Loading…</p></body></html>",
		},
		broken: map[string]error{},
	}
}

var testOpts = Options{
	Timeout:      100 * time.Millisecond,
	PollInterval: 10 * time.Millisecond,
}

func TestRunner_ItemsAcrossRoutes(t *testing.T) {
	fake := newFake()
	opts := testOpts
	opts.Routes = []string{"#/status/Lamp", "#/status/Empty", "#/status/Fans"}

	res, err := NewRunner(fake, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.StatusItem{
		{Label: "Lamp Hours", Value: "1234"},
		{Label: "Lamp Mode", Value: "Normal"},
		{Label: "Fan 1", Value: "1500 rpm"},
	}, res.Items)
	assert.Equal(t, []string{"#/status/Empty"}, res.Failed, "a route that never renders times out and is skipped")
	assert.Equal(t, opts.Routes, fake.visited)
}

func TestRunner_NavigationFailureContinues(t *testing.T) {
	fake := newFake()
	fake.broken["#/status/Lamp"] = fmt.Errorf("route: %w", ErrTimeout)
	opts := testOpts
	opts.Routes = []string{"#/status/Lamp", "#/status/Fans"}

	res, err := NewRunner(fake, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StatusItem{{Label: "Fan 1", Value: "1500 rpm"}}, res.Items)
	assert.Equal(t, []string{"#/status/Lamp"}, res.Failed)
}

func TestRunner_ContextMode(t *testing.T) {
	fake := newFake()
	opts := testOpts
	opts.Mode = models.ModeContext
	opts.Routes = []string{"#/status/Lamp", "#/status/Fans"}

	res, err := NewRunner(fake, opts).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Contexts, 2)
	assert.Empty(t, res.Items)

	lamp := res.Contexts[0]
	assert.Equal(t, "http://localhost:4200/#/status/Lamp", lamp.URL)
	require.NotNil(t, lamp.Title)
	assert.Equal(t, "Status", *lamp.Title)
	assert.Contains(t, lamp.Sections, models.Section(models.NameValue{Name: "Lamp Hours", Value: "1234"}))
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := testOpts
	opts.Routes = []string{"#/status/Lamp"}

	_, err := NewRunner(newFake(), opts).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_SnapshotsAndProgress(t *testing.T) {
	dir := t.TempDir()
	var progress bytes.Buffer
	opts := testOpts
	opts.Routes = []string{"#/status/Lamp"}
	opts.SnapshotDir = dir
	opts.Progress = &progress

	_, err := NewRunner(newFake(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "status_Lamp.md"))
	assert.FileExists(t, filepath.Join(dir, "status_Lamp.html"))
	assert.NotEmpty(t, progress.String())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status_data.json")

	written, err := Save(&Result{Mode: models.ModeItems}, path)
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoFileExists(t, path)

	written, err = Save(&Result{
		Mode:  models.ModeItems,
		Items: []models.StatusItem{{Label: "Temp <max>", Value: "45 °C"}},
	}, path)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Temp <max>"`)
	assert.Contains(t, string(data), "45 °C")

	var items []models.StatusItem
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Len(t, items, 1)
}

func TestSave_WriteError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := Save(&Result{
		Mode:  models.ModeItems,
		Items: []models.StatusItem{{Label: "a", Value: "b"}},
	}, filepath.Join(blocker, "out.json"))

	assert.ErrorIs(t, err, ErrWrite)
	assert.Equal(t, ErrCodeWrite, Classify(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrCodeTimeout, Classify(fmt.Errorf("wrap: %w", ErrTimeout)))
	assert.Equal(t, ErrCodeTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, ErrCodeMalformedInput, Classify(ErrMalformedInput))
	assert.Equal(t, ErrCodeBrowser, Classify(errors.New("target crashed")))

	serr := NewScrapeError("x", ErrTimeout)
	assert.ErrorIs(t, serr, &ScrapeError{Code: ErrCodeTimeout})
	assert.ErrorIs(t, serr, ErrTimeout)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, []models.StatusItem{{Label: "Lamp Hours", Value: "1234"}, {Label: "Fan 1", Value: "OK"}})
	assert.Equal(t, "Lamp Hours: 1234\nFan 1: OK\n", buf.String())
}
