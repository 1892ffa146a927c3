package thumbnail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "1700000000000-123456789.1.png", FileName("1700000000000-123456789.pdf"))
	require.Equal(t, "noext.1.png", FileName("noext"))
}

func TestGenerate_InvokesConverter(t *testing.T) {
	outDir := t.TempDir()
	var gotName string
	var gotArgs []string

	g := NewPDFToPPM("", outDir).WithRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		prefix := args[len(args)-1]
		return nil, os.WriteFile(prefix+".png", []byte("png"), 0o644)
	})

	name, err := g.Generate(context.Background(), "/data/books/42-000000001.pdf")
	require.NoError(t, err)
	require.Equal(t, "42-000000001.1.png", name)
	require.Equal(t, "pdftoppm", gotName)
	require.Contains(t, gotArgs, "-singlefile")
	require.Equal(t, "/data/books/42-000000001.pdf", gotArgs[len(gotArgs)-2])
	require.Equal(t, filepath.Join(outDir, "42-000000001.1"), gotArgs[len(gotArgs)-1])
	require.FileExists(t, filepath.Join(outDir, name))
}

func TestGenerate_ConverterFailure(t *testing.T) {
	g := NewPDFToPPM("pdftoppm", t.TempDir()).WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Syntax Error: Couldn't read xref table"), errors.New("exit status 1")
	})

	_, err := g.Generate(context.Background(), "/tmp/bad.pdf")
	require.ErrorContains(t, err, "xref")
}

func TestGenerate_NoOutput(t *testing.T) {
	g := NewPDFToPPM("pdftoppm", t.TempDir()).WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, nil
	})

	_, err := g.Generate(context.Background(), "/tmp/empty.pdf")
	require.ErrorContains(t, err, "was not produced")
}
