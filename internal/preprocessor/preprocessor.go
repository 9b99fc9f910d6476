package preprocessor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/fwessels/amalgamate/internal/errors"
	"github.com/fwessels/amalgamate/internal/includes"
)

// ---------------- Preprocessor ----------------

// FileReader returns the full contents of a resolved file. afero.Afero
// satisfies it.
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// Preprocessor flattens a file and everything it includes into a single
// text, expanding each module at most once.
type Preprocessor struct {
	Includes includes.Map
	Reader   FileReader
	Logger   *log.Logger
}

func NewPreprocessor(incs includes.Map, fs afero.Fs, logger *log.Logger) *Preprocessor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if incs == nil {
		incs = includes.Map{}
	}
	return &Preprocessor{
		Includes: incs,
		Reader:   &afero.Afero{Fs: fs},
		Logger:   logger,
	}
}

// Process flattens the text read from r, which is known as filename, and
// writes the result to w.
func (p *Preprocessor) Process(ctx context.Context, filename string, r io.Reader, w io.Writer) error {
	bs, err := io.ReadAll(r)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "read %s", shortPath(filename))
	}
	if abs, err := filepath.Abs(filename); err == nil {
		filename = abs
	}

	unit := NewUnit()
	if err := p.expand(ctx, unit, filename, string(bs)); err != nil {
		return err
	}
	_, err = unit.WriteTo(w)
	return errors.WithStackTrace(err)
}

// ProcessFile flattens the file at filename.
func (p *Preprocessor) ProcessFile(ctx context.Context, filename string, w io.Writer) error {
	bs, err := p.Reader.ReadFile(filename)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	return p.Process(ctx, filename, strings.NewReader(string(bs)), w)
}

// ---------------- Bundling ----------------

// BundleName is the file name the synthesized bundle source is known by.
const BundleName = "__bundle__"

var bundleExts = map[string]bool{
	".h": true, ".c": true, ".hpp": true, ".cpp": true,
	".cx": true, ".cxx": true, ".hx": true, ".hxx": true, "": true,
}

// BundleSource returns a source that includes every indexed C/C++ file.
func BundleSource(incs includes.Map) string {
	var b strings.Builder
	b.WriteString(PragmaOnce + "\n")
	for _, path := range incs.TopLevel() {
		if !bundleExts[filepath.Ext(path)] {
			continue
		}
		fmt.Fprintf(&b, "#include\"%s\"\n", path)
	}
	return b.String()
}

// Bundle flattens every indexed file into one output.
func (p *Preprocessor) Bundle(ctx context.Context, w io.Writer) error {
	src := BundleSource(p.Includes)
	p.Logger.Debug("bundle source", "text", src)
	return p.Process(ctx, BundleName, strings.NewReader(src), w)
}
