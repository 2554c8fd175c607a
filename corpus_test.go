package rex

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"
	"gotest.tools/v3/assert"
)

// corpusPatterns maps the pattern names used in testdata/corpus.yaml to
// their combinator definitions.
var corpusPatterns = map[string]func() *Ast{
	"literal-abc": func() *Ast { return Str("abc") },
	"a-bstar-c": func() *Ast {
		return Seq(Str("a"), Rep(Char('b')), Str("c"))
	},
	"digits": func() *Ast { return Rep1(Digit()) },
	"key-value": func() *Ast {
		return Seq(Group(Rep1(Alpha())), Str("="), Group(Rep1(Digit())))
	},
	"word-cat": func() *Ast { return Word(Str("cat")) },
	"line-anchored": func() *Ast {
		return Seq(Bol(), Char('b'))
	},
	"nocase-hex": func() *Ast {
		return NoCase(Seq(Str("0x"), Rep1(Xdigit())))
	},
	"opt-sign-int": func() *Ast {
		return Seq(Group(Opt(Char('-'))), Rep1(Digit()))
	},
}

type corpusCase struct {
	Input  string   `yaml:"input"`
	Start  int      `yaml:"start"`
	Stop   int      `yaml:"stop"`
	Groups []string `yaml:"groups"`
}

type corpusEntry struct {
	Pattern string       `yaml:"pattern"`
	Cases   []corpusCase `yaml:"cases"`
}

func TestCorpus(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "corpus.yaml"))
	assert.NilError(t, err)

	var entries []corpusEntry
	assert.NilError(t, yaml.Unmarshal(raw, &entries))
	assert.Assert(t, len(entries) > 0)

	for _, e := range entries {
		build, ok := corpusPatterns[e.Pattern]
		if !ok {
			t.Errorf("corpus names unknown pattern %q", e.Pattern)
			continue
		}
		re := Compile(build())
		for _, c := range e.Cases {
			t.Run(e.Pattern+"/"+c.Input, func(t *testing.T) {
				m := re.ExecOpt([]byte(c.Input))
				if c.Start == -1 {
					assert.Assert(t, m == nil, "expected no match")
					return
				}
				assert.Assert(t, m != nil, "expected a match")
				start, stop, err := m.Offset(0)
				assert.NilError(t, err)
				assert.Equal(t, c.Start, start)
				assert.Equal(t, c.Stop, stop)
				for i, want := range c.Groups {
					assert.Equal(t, want, m.GetString(i+1), "group %d", i+1)
				}
			})
		}
	}
}
