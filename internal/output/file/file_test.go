package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
	"github.com/aiworkoutgenerator/workoutflat/internal/output"
)

type testRecord struct {
	Minutes  int     `json:"duration_total_minutes"`
	DataJSON *string `json:"duration_data_json"`
}

func testResult(id string, minutes int) model.Result {
	data := fmt.Sprintf("%d", minutes)
	return model.Result{
		ID:     id,
		Domain: model.Duration,
		Record: testRecord{Minutes: minutes, DataJSON: &data},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testResult(fmt.Sprint(i), 30)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var res struct {
			ID     string         `json:"id"`
			Record map[string]any `json:"record"`
		}
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if res.ID != fmt.Sprint(i) {
			t.Errorf("line %d: id = %q", i, res.ID)
		}
		if res.Record["duration_total_minutes"] != 30.0 {
			t.Errorf("line %d: minutes = %v", i, res.Record["duration_total_minutes"])
		}
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")

	// Each line is ~95 bytes, so every write after the first rotates.
	out, err := New(path, output.Full, WithMaxSize(150))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testResult("r", 45)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
	if _, err := os.Stat(path + ".4"); os.IsNotExist(err) {
		t.Error("expected rotated file .4 to exist")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current file stat error: %v", err)
	}
	if info.Size() == 0 {
		t.Error("current file is empty after rotation")
	}
}

func TestCloseFlushesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testResult("a", 20))
	out.Close()

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Error("file is empty, Close did not flush buffered data")
	}
}

func TestAppendAndTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	for i := 0; i < 2; i++ {
		out, err := New(path, output.Full)
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		out.Write(context.Background(), testResult("a", 20))
		out.Close()
	}
	if n := len(readLines(t, path)); n != 2 {
		t.Fatalf("append: got %d lines, want 2", n)
	}

	out, err := New(path, output.Full, WithTruncate())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testResult("b", 20))
	out.Close()
	if n := len(readLines(t, path)); n != 1 {
		t.Fatalf("truncate: got %d lines, want 1", n)
	}
}

func TestVerbosityCompactStripsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Compact)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testResult("a", 60))
	out.Close()

	line := readLines(t, path)[0]
	if strings.Contains(line, "duration_data_json") {
		t.Error("Compact verbosity should strip data_json")
	}
	if !strings.Contains(line, "duration_total_minutes") {
		t.Error("Compact verbosity should keep other fields")
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Full)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testResult("c", i))
		}()
	}
	wg.Wait()
	out.Close()

	if n := len(readLines(t, path)); n != 50 {
		t.Errorf("got %d lines, want 50", n)
	}
}

func TestOpenFailure(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "out.jsonl"), output.Full)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
