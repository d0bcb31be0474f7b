package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mmd2png/pkg/cache"
	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
	"github.com/matzehuels/mmd2png/pkg/mermaid"
)

// fakeRenderer records every request and writes a small file to the output.
type fakeRenderer struct {
	requests []mermaid.Request
	failOn   map[string]bool // base names that fail to render
	err      error           // returned for every render when set
}

func (f *fakeRenderer) Probe(ctx context.Context) (string, error) { return "test", nil }

func (f *fakeRenderer) Render(ctx context.Context, req mermaid.Request) error {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	if f.failOn[filepath.Base(req.Input)] {
		return mmerrors.Wrap(mmerrors.ErrCodeRenderFailed,
			&mermaid.ExitError{Stderr: "Parse error", Err: errors.New("exit status 1")},
			"render %s", req.Input)
	}
	return os.WriteFile(req.Output, []byte("PNG:"+req.Input), 0644)
}

func (f *fakeRenderer) inputs() []string {
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Input)
	}
	return out
}

// recorder is a Reporter that keeps every event.
type recorder struct {
	found     []int
	converted []string
	unchanged []string
	failed    map[string]error
}

func newRecorder() *recorder { return &recorder{failed: map[string]error{}} }

func (r *recorder) Found(dir string, n int) { r.found = append(r.found, n) }
func (r *recorder) Converted(in, out string) { r.converted = append(r.converted, out) }
func (r *recorder) Unchanged(in, out string) { r.unchanged = append(r.unchanged, out) }
func (r *recorder) Failed(path string, err error) { r.failed[path] = err }

func quietLogger() *log.Logger { return log.New(io.Discard) }

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, n)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("graph TD; A-->B"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Scale != 4 || o.Background != "white" {
		t.Errorf("DefaultOptions() = %+v, want scale 4 and white background", o)
	}
	if o.OutputDir != "" || o.Recursive || o.Incremental {
		t.Errorf("DefaultOptions() = %+v, want only scale and background set", o)
	}
}

func TestConvertFilePassesZeroValuesThrough(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "flow.mmd")

	r := &fakeRenderer{}
	c := NewConverter(r, nil, nil, quietLogger())
	if !c.ConvertFile(context.Background(), filepath.Join(dir, "flow.mmd"), Options{Scale: 0, Background: ""}) {
		t.Fatal("ConvertFile() = false")
	}
	if got := r.requests[0]; got.Scale != 0 || got.Background != "" {
		t.Errorf("request = %+v, want scale 0 and empty background unchanged", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name, input, outDir, want string
	}{
		{"beside input", filepath.Join("docs", "flow.mmd"), "", filepath.Join("docs", "flow.png")},
		{"output dir", filepath.Join("docs", "flow.mmd"), "out", filepath.Join("out", "flow.png")},
		{"dotted stem", filepath.Join("docs", "v1.2.flow.mmd"), "", filepath.Join("docs", "v1.2.flow.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputPath(tt.input, tt.outDir); got != tt.want {
				t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.input, tt.outDir, got, tt.want)
			}
		})
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "flow.mmd", "notes.txt")

	r := &fakeRenderer{}
	rec := newRecorder()
	c := NewConverter(r, nil, rec, quietLogger())

	if !c.ConvertFile(context.Background(), filepath.Join(dir, "flow.mmd"), DefaultOptions()) {
		t.Fatalf("ConvertFile() = false, failures: %v", rec.failed)
	}

	want := mermaid.Request{
		Input:      filepath.Join(dir, "flow.mmd"),
		Output:     filepath.Join(dir, "flow.png"),
		Scale:      4,
		Background: "white",
	}
	if len(r.requests) != 1 || r.requests[0] != want {
		t.Fatalf("requests = %+v, want [%+v]", r.requests, want)
	}
	if _, err := os.Stat(want.Output); err != nil {
		t.Errorf("output missing: %v", err)
	}

	pngs, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	if len(pngs) != 1 {
		t.Errorf("found %d png files, want exactly 1", len(pngs))
	}
}

func TestConvertFileRejectsWithoutRendering(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	tests := []struct {
		name string
		path string
		code mmerrors.Code
	}{
		{"missing file", filepath.Join(dir, "missing.mmd"), mmerrors.ErrCodeFileNotFound},
		{"wrong extension", filepath.Join(dir, "notes.txt"), mmerrors.ErrCodeInvalidExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			rec := newRecorder()
			c := NewConverter(r, nil, rec, quietLogger())

			if c.ConvertFile(context.Background(), tt.path, Options{}) {
				t.Fatal("ConvertFile() = true, want false")
			}
			if len(r.requests) != 0 {
				t.Errorf("renderer invoked %d times, want 0", len(r.requests))
			}
			if got := mmerrors.GetCode(rec.failed[tt.path]); got != tt.code {
				t.Errorf("reported code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestConvertFileOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "flow.mmd")
	outDir := filepath.Join(dir, "build", "images")

	r := &fakeRenderer{}
	c := NewConverter(r, nil, nil, quietLogger())
	if !c.ConvertFile(context.Background(), filepath.Join(dir, "flow.mmd"), Options{OutputDir: outDir, Scale: 2, Background: "transparent"}) {
		t.Fatal("ConvertFile() = false")
	}

	if _, err := os.Stat(filepath.Join(outDir, "flow.png")); err != nil {
		t.Errorf("output not in output dir: %v", err)
	}
	if got := r.requests[0]; got.Scale != 2 || got.Background != "transparent" {
		t.Errorf("options not forwarded verbatim: %+v", got)
	}
}

func TestConvertFileRendererFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "bad.mmd")
	path := filepath.Join(dir, "bad.mmd")

	r := &fakeRenderer{failOn: map[string]bool{"bad.mmd": true}}
	rec := newRecorder()
	c := NewConverter(r, nil, rec, quietLogger())

	if c.ConvertFile(context.Background(), path, Options{}) {
		t.Fatal("ConvertFile() = true, want false")
	}
	if len(r.requests) != 1 {
		t.Errorf("renderer invoked %d times, want exactly 1 (no retry)", len(r.requests))
	}
	if !mmerrors.Is(rec.failed[path], mmerrors.ErrCodeRenderFailed) {
		t.Errorf("reported error = %v, want %s", rec.failed[path], mmerrors.ErrCodeRenderFailed)
	}
}

func TestConvertDirectorySortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.mmd", "a.mmd", "b.mmd", "readme.md")

	r := &fakeRenderer{}
	rec := newRecorder()
	c := NewConverter(r, nil, rec, quietLogger())

	res := c.ConvertDirectory(context.Background(), dir, Options{})
	if !res.OK() {
		t.Fatalf("ConvertDirectory() not OK: %+v", res)
	}
	if res.Found != 3 || res.Converted != 3 {
		t.Errorf("result = %+v, want 3 found and converted", res)
	}

	want := []string{filepath.Join(dir, "a.mmd"), filepath.Join(dir, "b.mmd"), filepath.Join(dir, "c.mmd")}
	if got := r.inputs(); !reflect.DeepEqual(got, want) {
		t.Errorf("render order = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(rec.found, []int{3}) {
		t.Errorf("Found events = %v, want [3]", rec.found)
	}
}

func TestConvertDirectoryNoShortCircuit(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mmd", "b.mmd", "c.mmd", "d.mmd")

	r := &fakeRenderer{failOn: map[string]bool{"b.mmd": true}}
	c := NewConverter(r, nil, nil, quietLogger())

	res := c.ConvertDirectory(context.Background(), dir, Options{})
	if res.OK() {
		t.Fatal("ConvertDirectory() OK, want failure")
	}
	if len(r.requests) != 4 {
		t.Errorf("renderer invoked %d times, want 4", len(r.requests))
	}
	if res.Converted != 3 || res.Failed != 1 {
		t.Errorf("result = %+v, want 3 converted and 1 failed", res)
	}
}

func TestConvertDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.mmd", filepath.Join("sub", "nested.mmd"))

	for _, tc := range []struct {
		recursive bool
		want      int
	}{{false, 1}, {true, 2}} {
		r := &fakeRenderer{}
		c := NewConverter(r, nil, nil, quietLogger())
		res := c.ConvertDirectory(context.Background(), dir, Options{Recursive: tc.recursive})
		if res.Found != tc.want || len(r.requests) != tc.want {
			t.Errorf("recursive=%v: found %d, rendered %d, want %d", tc.recursive, res.Found, len(r.requests), tc.want)
		}
	}
}

func TestConvertDirectoryInputErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "only.txt", filepath.Join("sub", "nested.mmd"))

	tests := []struct {
		name string
		path string
		code mmerrors.Code
	}{
		{"missing directory", filepath.Join(dir, "nope"), mmerrors.ErrCodeFileNotFound},
		{"file instead of directory", filepath.Join(dir, "only.txt"), mmerrors.ErrCodeNotADirectory},
		{"no matching files", dir, mmerrors.ErrCodeNoInputFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			rec := newRecorder()
			c := NewConverter(r, nil, rec, quietLogger())

			res := c.ConvertDirectory(context.Background(), tt.path, Options{})
			if res.OK() {
				t.Fatal("ConvertDirectory() OK, want failure")
			}
			if !mmerrors.Is(res.Err, tt.code) {
				t.Errorf("Err = %v, want %s", res.Err, tt.code)
			}
			if len(r.requests) != 0 {
				t.Errorf("renderer invoked %d times, want 0", len(r.requests))
			}
			if _, ok := rec.failed[tt.path]; !ok {
				t.Error("failure was not reported")
			}
		})
	}
}

func TestConvertDirectoryOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mmd", filepath.Join("sub", "b.mmd"))
	outDir := filepath.Join(t.TempDir(), "out")

	c := NewConverter(&fakeRenderer{}, nil, nil, quietLogger())
	res := c.ConvertDirectory(context.Background(), dir, Options{Recursive: true, OutputDir: outDir})
	if !res.OK() {
		t.Fatalf("ConvertDirectory() not OK: %+v", res)
	}
	for _, name := range []string{"a.png", filepath.Join("sub", "b.png")} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s not written to output dir: %v", name, err)
		}
	}
}

func TestConvertDirectoryOutputDirKeepsSameNamesApart(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, filepath.Join("a", "flow.mmd"), filepath.Join("b", "flow.mmd"))
	outDir := filepath.Join(t.TempDir(), "out")

	r := &fakeRenderer{}
	res := NewConverter(r, nil, nil, quietLogger()).ConvertDirectory(context.Background(), dir, Options{Recursive: true, OutputDir: outDir})
	if !res.OK() || res.Converted != 2 {
		t.Fatalf("ConvertDirectory() = %+v, want 2 converted", res)
	}

	for _, sub := range []string{"a", "b"} {
		out := filepath.Join(outDir, sub, "flow.png")
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("%s not written: %v", out, err)
		}
		if want := "PNG:" + filepath.Join(dir, sub, "flow.mmd"); string(data) != want {
			t.Errorf("%s = %q, want %q", out, data, want)
		}
	}
}

func TestMirrorDir(t *testing.T) {
	root := filepath.Join("docs", "diagrams")
	tests := []struct {
		name, file, want string
	}{
		{"top level", filepath.Join(root, "a.mmd"), "out"},
		{"nested", filepath.Join(root, "x", "y", "a.mmd"), filepath.Join("out", "x", "y")},
		{"outside root", filepath.Join("other", "a.mmd"), "out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mirrorDir(root, tt.file, "out"); got != tt.want {
				t.Errorf("mirrorDir(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestConvertDirectoryStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mmd", "b.mmd")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRenderer{}
	res := NewConverter(r, nil, nil, quietLogger()).ConvertDirectory(ctx, dir, Options{})
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", res.Err)
	}
	if len(r.requests) != 0 {
		t.Errorf("renderer invoked %d times after cancellation", len(r.requests))
	}
}

func TestIncrementalSkipsCurrentOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "flow.mmd")
	path := filepath.Join(dir, "flow.mmd")

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRenderer{}
	rec := newRecorder()
	c := NewConverter(r, fc, rec, quietLogger())
	opts := Options{Incremental: true}
	ctx := context.Background()

	if !c.ConvertFile(ctx, path, opts) {
		t.Fatal("first ConvertFile() = false")
	}
	if !c.ConvertFile(ctx, path, opts) {
		t.Fatal("second ConvertFile() = false")
	}
	if len(r.requests) != 1 {
		t.Errorf("renderer invoked %d times, want 1", len(r.requests))
	}
	if len(rec.unchanged) != 1 {
		t.Errorf("unchanged events = %d, want 1", len(rec.unchanged))
	}

	// Editing the source invalidates the record.
	if err := os.WriteFile(path, []byte("graph LR; X-->Y"), 0644); err != nil {
		t.Fatal(err)
	}
	if !c.ConvertFile(ctx, path, opts) || len(r.requests) != 2 {
		t.Errorf("edited source should render again, requests = %d", len(r.requests))
	}

	// Removing the output invalidates the record too.
	if err := os.Remove(filepath.Join(dir, "flow.png")); err != nil {
		t.Fatal(err)
	}
	if !c.ConvertFile(ctx, path, opts) || len(r.requests) != 3 {
		t.Errorf("missing output should render again, requests = %d", len(r.requests))
	}
}

func TestNonIncrementalAlwaysRenders(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "flow.mmd")
	path := filepath.Join(dir, "flow.mmd")

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRenderer{}
	c := NewConverter(r, fc, nil, quietLogger())
	for i := 0; i < 2; i++ {
		c.ConvertFile(context.Background(), path, Options{})
	}
	if len(r.requests) != 2 {
		t.Errorf("renderer invoked %d times, want 2", len(r.requests))
	}
}

func TestFindFilesOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		filepath.Join("a-b", "x.mmd"),
		filepath.Join("a", "z.mmd"),
		"B.mmd",
		"a.mmd",
	)

	got, err := FindFiles(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "B.mmd"),
		filepath.Join(dir, "a", "z.mmd"),
		filepath.Join(dir, "a-b", "x.mmd"),
		filepath.Join(dir, "a.mmd"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindFiles() = %v, want %v", got, want)
	}
}
