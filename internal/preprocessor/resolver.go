package preprocessor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fwessels/amalgamate/internal/errors"
)

// resolver scans one module and expands its includes into the shared unit.
type resolver struct {
	ctx      context.Context
	pp       *Preprocessor
	unit     *Unit
	filename string
	cur      *Cursor
}

func (p *Preprocessor) expand(ctx context.Context, unit *Unit, filename, text string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStackTrace(err)
	}
	p.Logger.Info("processing", "file", filename)
	unit.MarkExpanded(filename)

	rs := &resolver{
		ctx:      ctx,
		pp:       p,
		unit:     unit,
		filename: filename,
		cur:      NewCursor(text),
	}
	racer := NewRacer()
	for kind, action := range [...]Action{
		KindInclude:    rs.include,
		KindPragmaOnce: rs.pragmaOnce,
		KindLine:       rs.line,
	} {
		racer.Add(Kind(kind).New(), action)
	}
	return racer.Run(rs.cur)
}

func (rs *resolver) line(text string) error {
	rs.unit.Emit(text)
	return nil
}

func (rs *resolver) pragmaOnce(string) error {
	if !rs.unit.EmitPragmaOnce() {
		rs.cur.SkipLineTerminator()
	}
	return nil
}

// include runs right after the "include" keyword. Anything that is not a
// resolvable "target" or <target> is put back and emitted as plain text.
func (rs *resolver) include(text string) error {
	cur := rs.cur
	mark := cur.Pos()
	passthrough := func() error {
		cur.Seek(mark)
		rs.unit.Emit(text)
		return nil
	}

	open := byte(' ')
	for isBlank(open) {
		ch, ok := cur.Next()
		if !ok {
			return passthrough()
		}
		open = ch
	}

	var closer byte
	switch open {
	case '"':
		closer = '"'
	case '<':
		closer = '>'
	default:
		return passthrough()
	}

	from := cur.Pos()
	for {
		ch, ok := cur.Next()
		if !ok {
			return passthrough()
		}
		if ch == closer {
			break
		}
	}
	target := cur.Slice(from, cur.Pos()-1)
	if strings.HasPrefix(target, "./") {
		target = filepath.Join(filepath.Dir(rs.filename), target[2:])
	}

	module, ok := rs.pp.Includes.Resolve(target)
	if !ok {
		rs.pp.Logger.Debug("unresolved include", "file", shortPath(rs.filename), "target", target)
		return passthrough()
	}
	if rs.unit.IsExpanded(module) {
		// Only the line terminator goes; the rest of the line is kept.
		rs.pp.Logger.Debug("duplicate include", "file", shortPath(rs.filename), "target", target)
		cur.SkipLineTerminator()
		return nil
	}

	rs.unit.MarkExpanded(module)
	bs, err := rs.pp.Reader.ReadFile(module)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "%s: include %q", shortPath(rs.filename), target)
	}
	before := rs.unit.Len()
	if err := rs.pp.expand(rs.ctx, rs.unit, module, string(bs)); err != nil {
		return err
	}
	if rs.unit.Len() == before || rs.unit.EndsWithLine() {
		cur.SkipLineTerminator()
	}
	return nil
}

func shortPath(p string) string {
	// nicer errors
	if p == "" {
		return p
	}
	return filepath.Base(p)
}
