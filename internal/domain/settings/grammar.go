package settings

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// settingsFile is the whole text: statements separated by ';'.
type settingsFile struct {
	Statements []*statement `parser:"@@? ( \";\" @@? )*"`
}

type statement struct {
	Pos lexer.Position

	Stage     []*stageEntry  `parser:"  \"stage\" @@+"`
	NoJudge   *activityRef   `parser:"| \"no_judge\" @@"`
	NoScram   *activityRef   `parser:"| \"no_scram\" @@"`
	MinGroups *minGroupsStmt `parser:"| \"min_groups\" @@"`
}

type stageEntry struct {
	Pos lexer.Position

	Head string `parser:"@Word"`
	Tail string `parser:"( \"-\" @Word )?"`
}

type activityRef struct {
	Pos lexer.Position

	Event   string `parser:"@Word"`
	Attempt string `parser:"( ( \"-\" | \"..\" ) @Word )?"`
}

type minGroupsStmt struct {
	Ref   *activityRef `parser:"@@"`
	Count string       `parser:"@Word"`
}

var settingsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Word", Pattern: `[A-Za-z0-9_]+`},
	{Name: "Range", Pattern: `\.\.`},
	{Name: "Punct", Pattern: `[-;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var settingsParser = participle.MustBuild[settingsFile](
	participle.Lexer(settingsLexer),
	participle.Elide("Whitespace", "Comment"),
)
