package cleaning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

const rawHeader = "Timestamp,Price,Size\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

type fakeRecorder struct {
	mu    sync.Mutex
	stats map[string]models.CleanStats
	err   error
}

func (f *fakeRecorder) UpsertCleaningLog(_ context.Context, name string, s models.CleanStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == nil {
		f.stats = map[string]models.CleanStats{}
	}
	f.stats[name] = s
	return f.err
}

func TestCleanDirectory_WritesOneOutputPerInput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "clean") // created by CleanDirectory

	writeFile(t, in, "ctg_tick_20240102_0001_a.csv", rawHeader+
		"2024-01-02 09:30:00.000000,150,10\n"+
		"2024-01-02 09:30:00.000000,151,10\n"+
		"2024-01-02 09:30:01.000000,-152,4\n")
	writeFile(t, in, "ctg_tick_20240102_0002_a.csv", rawHeader+
		"2024-01-02 09:31:00.000000,50,1\n") // below floor: nothing survives
	writeFile(t, in, "notes.txt", "ignored")

	rec := &fakeRecorder{}
	report, err := CleanDirectory(context.Background(), Options{InputDir: in, OutputDir: out, Workers: 2, Recorder: rec})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Files, 2)

	got, err := os.ReadFile(filepath.Join(out, "ctg_tick_20240102_0001_a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Price,Size\n"+
		"2024-01-02 09:30:00.000000,150.0,10\n"+
		"2024-01-02 09:30:01.000000,152.0,4\n", string(got))

	empty, err := os.ReadFile(filepath.Join(out, "ctg_tick_20240102_0002_a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Price,Size\n", string(empty))

	_, err = os.Stat(filepath.Join(out, "notes.txt"))
	assert.True(t, os.IsNotExist(err))

	totals := report.Totals()
	assert.Equal(t, 4, totals.Rows)
	assert.Equal(t, 2, totals.Accepted)
	assert.Equal(t, 2, rec.stats["ctg_tick_20240102_0001_a.csv"].Accepted)
	assert.Equal(t, 1, rec.stats["ctg_tick_20240102_0002_a.csv"].Magnitude)
}

func TestCleanDirectory_HeaderOnlyAndEmptyInputs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.csv", rawHeader)
	writeFile(t, in, "b.csv", "")

	report, err := CleanDirectory(context.Background(), Options{InputDir: in, OutputDir: out, Workers: 1})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Len(t, report.Files, 2)
}

func TestCleanDirectory_FailuresAreCollectedNotFatal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "good.csv", rawHeader+"2024-01-02 09:30:00.000000,150,10\n")
	writeFile(t, in, "bad.csv", rawHeader+"2024-01-02 09:30:00.000000,150,10\n")

	boom := errors.New("disk full")
	old := cleanFileFn
	cleanFileFn = func(ctx context.Context, in string, opts Options) (FileResult, error) {
		if strings.HasSuffix(in, "bad.csv") {
			return FileResult{}, boom
		}
		return cleanFile(ctx, in, opts)
	}
	t.Cleanup(func() { cleanFileFn = old })

	report, err := CleanDirectory(context.Background(), Options{InputDir: in, OutputDir: out, Workers: 2})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, filepath.Join(in, "bad.csv"), report.Failures[0].Input)

	combined := report.Err()
	require.ErrorIs(t, combined, boom)
	assert.Contains(t, combined.Error(), "bad.csv")

	_, err = os.Stat(filepath.Join(out, "good.csv"))
	assert.NoError(t, err)
}

func TestCleanDirectory_RecorderErrorIsAFailure(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.csv", rawHeader+"2024-01-02 09:30:00.000000,150,10\n")

	rec := &fakeRecorder{err: errors.New("db down")}
	report, err := CleanDirectory(context.Background(), Options{InputDir: in, OutputDir: out, Recorder: rec})
	require.NoError(t, err)
	assert.Len(t, report.Failures, 1)
	assert.Error(t, report.Err())
}

func TestCleanDirectory_OutputDirNotCreatable(t *testing.T) {
	in := t.TempDir()
	blocker := writeFile(t, t.TempDir(), "file", "x")

	_, err := CleanDirectory(context.Background(), Options{InputDir: in, OutputDir: filepath.Join(blocker, "sub")})
	assert.Error(t, err)
}

func TestWriteTicks_CreateError(t *testing.T) {
	err := WriteTicks(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	assert.Error(t, err)
}
