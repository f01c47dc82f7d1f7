package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	"github.com/getsentry/ftracer/internal/inspect"
	"github.com/getsentry/ftracer/internal/storageutil"
	"github.com/getsentry/ftracer/internal/symbol"
	"github.com/getsentry/ftracer/internal/testutil"
)

var (
	temporaryDirectory string
	fileBlobBucket     *blob.Bucket
)

func TestMain(m *testing.M) {
	var err error
	temporaryDirectory, err = os.MkdirTemp(os.TempDir(), "ftracer-*")
	if err != nil {
		log.Fatalf("couldn't create a temporary directory: %s", err.Error())
	}

	fileBlobBucket, err = fileblob.OpenBucket(temporaryDirectory, nil)
	if err != nil {
		log.Fatalf("couldn't open a local filesystem bucket: %s", err.Error())
	}

	code := m.Run()

	if err := fileBlobBucket.Close(); err != nil {
		log.Printf("couldn't close the local filesystem bucket: %s", err.Error())
	}

	err = os.RemoveAll(temporaryDirectory)
	if err != nil {
		log.Printf("couldn't remove the temporary directory: %s", err.Error())
	}

	os.Exit(code)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, objectName string) {
	t.Helper()
	frequency := 1000.0
	size1, size2 := 3, 1
	s := inspect.Snapshot{
		Ticks: &frequency,
		Threads: []inspect.Thread{
			{
				ID:   1,
				Size: &size1,
				Buffer: []inspect.Entry{
					{Timestamp: 1000, Func: 0x401000, Arg1: 0x1, StackPointer: 500},
					{Timestamp: 2000, Func: 0x401100, Arg1: 0x2, StackPointer: 480},
					{},
				},
			},
			{
				ID:     2,
				Size:   &size2,
				Buffer: []inspect.Entry{{Timestamp: 1500, Func: 0x401000, Arg3: 0xff, StackPointer: 700}},
			},
		},
		Symbols: map[string]string{
			"0x401000": "0x401000 <main+16>",
			"0x401100": "0x401100 <compute>",
		},
	}
	if err := storageutil.CompressedWrite(context.Background(), fileBlobBucket, objectName, s); err != nil {
		t.Fatalf("we should be able to write the snapshot: %v", err)
	}
}

func fields(output string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

func TestReportFromSnapshot(t *testing.T) {
	objectName := uuid.New().String() + ".json.lz4"
	writeSnapshot(t, objectName)

	output, err := execute(t, "--bucket", temporaryDirectory, "--snapshot", objectName, "--color", "off")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"TIME", "DELTA", "THR", "FUNC", "ARGS"},
		{"0.00", "0.00", "1", "main", "1", "0", "0"},
		{"0.50", "0.50", "2", "main", "0", "0", "ff"},
		{"1.00", "0.50", "1", "compute", "2", "0", "0"},
	}
	if diff := testutil.Diff(fields(output), want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestReportLimit(t *testing.T) {
	objectName := uuid.New().String() + ".msgpack"
	writeSnapshot(t, objectName)

	output, err := execute(t, "--bucket", "file://"+temporaryDirectory, "--snapshot", objectName, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"TIME", "DELTA", "THR", "FUNC", "ARGS"},
		{"0.00", "0.00", "1", "compute", "2", "0", "0"},
	}
	if diff := testutil.Diff(fields(output), want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestReportFromDumps(t *testing.T) {
	ctx := context.Background()
	prefix := uuid.New().String() + "/"
	entry := func(words ...uint64) []byte {
		var b []byte
		for _, w := range words {
			b = binary.LittleEndian.AppendUint64(b, w)
		}
		return b
	}
	objects := map[string][]byte{
		prefix + "frequency":    []byte("10"),
		prefix + "thread-1.bin": append(entry(10, 0x401000, 1, 2, 3, 900), entry(0, 0, 0, 0, 0, 0)...),
		prefix + "thread-2.bin": entry(20, 0x401100, 4, 5, 6, 800),
	}
	for key, content := range objects {
		if err := fileBlobBucket.WriteAll(ctx, key, content, nil); err != nil {
			t.Fatalf("we should be able to write an object: %v", err)
		}
	}

	output, err := execute(t, "--bucket", temporaryDirectory, "--dumps", prefix, "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"TIME", "DELTA", "THR", "FUNC", "ARGS"},
		{"0.00", "0.00", "1", "0x401000", "1", "2", "3"},
		{"1.00", "1.00", "2", "0x401100", "4", "5", "6"},
	}
	if diff := testutil.Diff(fields(output), want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestReportErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no source", args: []string{"--bucket", temporaryDirectory}},
		{name: "both sources", args: []string{"--bucket", temporaryDirectory, "--snapshot", "a.json", "--dumps", "b/"}},
		{name: "negative limit", args: []string{"--bucket", temporaryDirectory, "--snapshot", "a.json", "--", "-1"}},
		{name: "too many arguments", args: []string{"--bucket", temporaryDirectory, "--snapshot", "a.json", "1", "2"}},
		{name: "missing snapshot", args: []string{"--bucket", temporaryDirectory, "--snapshot", "missing.json"}},
		{name: "missing dumps frequency", args: []string{"--bucket", temporaryDirectory, "--dumps", "nothing/"}},
		{name: "unknown color mode", args: []string{"--bucket", temporaryDirectory, "--snapshot", "a.json", "--color", "always"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output, err := execute(t, test.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if output != "" {
				t.Fatalf("expected no report, got %q", output)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{args: nil, want: 0},
		{args: []string{"0"}, want: 0},
		{args: []string{"25"}, want: 25},
		{args: []string{"-3"}, wantErr: true},
		{args: []string{"ten"}, wantErr: true},
		{args: []string{"18446744073709551615"}, wantErr: true},
	}

	for _, test := range tests {
		got, err := parseLimit(test.args)
		if (err != nil) != test.wantErr {
			t.Fatalf("%v: unexpected error: %v", test.args, err)
		}
		if got != test.want {
			t.Fatalf("%v: wanted %d, got %d", test.args, test.want, got)
		}
	}
}

func TestReportWithSymbolTable(t *testing.T) {
	executable, err := os.Executable()
	if err != nil {
		t.Skipf("can't locate the test binary: %v", err)
	}
	if _, err := symbol.LoadELF(executable); err != nil {
		t.Skipf("test binary is not an ELF executable: %v", err)
	}
	objectName := uuid.New().String() + ".json"
	writeSnapshot(t, objectName)

	output, err := execute(t, "--bucket", temporaryDirectory, "--snapshot", objectName, "--symbols", executable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"TIME", "DELTA", "THR", "FUNC", "ARGS"},
		{"0.00", "0.00", "1", "main", "1", "0", "0"},
		{"0.50", "0.50", "2", "main", "0", "0", "ff"},
		{"1.00", "0.50", "1", "compute", "2", "0", "0"},
	}
	if diff := testutil.Diff(fields(output), want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	_, err = execute(t, "--bucket", temporaryDirectory, "--snapshot", objectName, "--symbols", objectName+".missing")
	if err == nil {
		t.Fatal("expected an error for a missing symbol file")
	}
}
