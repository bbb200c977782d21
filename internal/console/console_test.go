package console

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

type testConsole struct {
	*Console
	engine *storage.Engine
	out    *bytes.Buffer
	path   string
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	path := filepath.Join(t.TempDir(), types.DefaultJSONFile)
	engine := storage.NewEngine(storage.NewJSONFile(path))
	out := &bytes.Buffer{}
	return &testConsole{
		Console: New(engine, out, WithPrompt("")),
		engine:  engine,
		out:     out,
		path:    path,
	}
}

// exec runs one line and returns what it printed.
func (tc *testConsole) exec(line string) string {
	tc.out.Reset()
	tc.Execute(line)
	return tc.out.String()
}

func TestCreateThenShow(t *testing.T) {
	tc := newTestConsole(t)

	id := strings.TrimSpace(tc.exec("create City"))
	require.Len(t, id, 36)

	out := tc.exec("show City " + id)
	assert.True(t, strings.HasPrefix(out, "[City] ("+id+") {"), out)
	assert.Contains(t, out, "'id': '"+id+"'")
	assert.FileExists(t, tc.path, "create saves")
}

func TestCreateIgnoresExtraArguments(t *testing.T) {
	tc := newTestConsole(t)
	assert.Empty(t, tc.exec("create City extra"))
	assert.Empty(t, tc.exec("create Castle extra"))
	assert.Empty(t, tc.engine.All())
	assert.NoFileExists(t, tc.path)
}

func TestUpdateStripsQuotesAndRefreshesTimestamp(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create City"))
	r, err := tc.engine.Get(types.KindCity, id)
	require.NoError(t, err)
	before := r.Base().UpdatedAt

	assert.Empty(t, tc.exec(`update City `+id+` name "Fremont"`))

	out := tc.exec("show City " + id)
	assert.Contains(t, out, "'name': 'Fremont'")
	assert.True(t, r.Base().UpdatedAt.After(before))
}

func TestUpdateQuotedValueWithSpaces(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create Place"))

	tc.exec(`update Place ` + id + ` description "Two rooms, one view"`)
	r, err := tc.engine.Get(types.KindPlace, id)
	require.NoError(t, err)
	assert.Equal(t, "Two rooms, one view", r.(*types.Place).Description)
}

func TestUpdateUndeclaredAttribute(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create User"))

	tc.exec(`update User ` + id + ` nickname "bob"`)
	assert.Contains(t, tc.exec("show User "+id), "'nickname': 'bob'")
}

func TestDestroyThenShow(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create City"))

	assert.Empty(t, tc.exec("destroy City "+id))
	assert.Equal(t, "** no instance found **\n", tc.exec("show City "+id))
	assert.Empty(t, tc.engine.All())
}

func TestAll(t *testing.T) {
	tc := newTestConsole(t)
	cityID := strings.TrimSpace(tc.exec("create City"))
	userID := strings.TrimSpace(tc.exec("create User"))

	lines := strings.Split(strings.TrimSpace(tc.exec("all")), "\n")
	assert.Len(t, lines, 2)

	out := tc.exec("all City")
	assert.Contains(t, out, cityID)
	assert.NotContains(t, out, userID)

	assert.Empty(t, tc.exec("all Place"))
}

func TestCommandErrors(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create State"))

	tests := []struct {
		line string
		want string
	}{
		{"create", "** class name missing **"},
		{"create Castle", "** class doesn't exist **"},
		{"show", "** class name missing **"},
		{"show Castle 1", "** class doesn't exist **"},
		{"show State", "** instance id missing **"},
		{"show State nope", "** no instance found **"},
		{"destroy", "** class name missing **"},
		{"destroy Castle", "** class doesn't exist **"},
		{"destroy State", "** instance id missing **"},
		{"destroy State nope", "** no instance found **"},
		{"all Castle", "** class doesn't exist **"},
		{"update", "** class name missing **"},
		{"update Castle", "** class doesn't exist **"},
		{"update State", "** instance id missing **"},
		{"update State nope name x", "** no instance found **"},
		{"update State " + id, "** attribute name missing **"},
		{"update State " + id + " name", "** value missing **"},
		{"update State " + id + " id \"x\"", "** attribute is read-only: id **"},
		{"launch rockets", "*** Unknown syntax: launch rockets"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want+"\n", tc.exec(tt.line))
		})
	}
	assert.Len(t, tc.engine.All(), 1, "failed commands change nothing")
}

func TestEmptyLine(t *testing.T) {
	tc := newTestConsole(t)
	assert.False(t, tc.Execute("   "))
	assert.Empty(t, tc.out.String())
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), types.DefaultJSONFile)
	engine := storage.NewEngine(storage.NewJSONFile(path))
	out := &bytes.Buffer{}
	c := New(engine, out)

	in := strings.NewReader("create Amenity\nall Amenity\nquit\ncreate Amenity\n")
	require.NoError(t, c.Run(in))

	assert.Len(t, engine.All(), 1, "lines after quit are not executed")
	assert.True(t, strings.HasPrefix(out.String(), DefaultPrompt))
	assert.Contains(t, out.String(), "[Amenity] (")
}

func TestRunEndsAtEOF(t *testing.T) {
	tc := newTestConsole(t)
	require.NoError(t, tc.Run(strings.NewReader("create Review")))
	assert.Len(t, tc.engine.All(), 1)
}

func TestRunLongLine(t *testing.T) {
	tc := newTestConsole(t)
	id := strings.TrimSpace(tc.exec("create City"))
	long := strings.Repeat("x", 70000)

	in := strings.NewReader("update City " + id + ` name "` + long + "\"\nshow City " + id + "\n")
	tc.out.Reset()
	require.NoError(t, tc.Run(in))

	assert.Contains(t, tc.out.String(), "'name': '"+long+"'", "the command after the long line runs")
	r, err := tc.engine.Get(types.KindCity, id)
	require.NoError(t, err)
	assert.Equal(t, long, r.(*types.City).Name)
}

func TestRunCRLF(t *testing.T) {
	tc := newTestConsole(t)
	require.NoError(t, tc.Run(strings.NewReader("create State\r\nall State\r\n")))
	assert.Len(t, tc.engine.All(), 1)
	assert.Contains(t, tc.out.String(), "[State] (")
}

func TestQuitAndEOFCommands(t *testing.T) {
	tc := newTestConsole(t)
	assert.True(t, tc.Execute("quit"))
	assert.True(t, tc.Execute("EOF"))
	assert.False(t, tc.Execute("all"))
}

func TestHelp(t *testing.T) {
	tc := newTestConsole(t)

	out := tc.exec("help")
	for _, name := range []string{"EOF", "all", "create", "destroy", "help", "quit", "show", "update"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, tc.exec("help update"), "Usage: update")
	assert.Equal(t, "Quit command to exit the program\n", tc.exec("help quit"))
	assert.Equal(t, "*** No help on fly\n", tc.exec("help fly"))
}

func TestDispatch(t *testing.T) {
	tc := newTestConsole(t)

	quit, err := tc.Dispatch("create", []string{"City"})
	require.NoError(t, err)
	assert.False(t, quit)

	_, err = tc.Dispatch("show", []string{"City"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tc.Dispatch("fly", nil)
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  all  ", []string{"all"}},
		{"show City 123", []string{"show", "City", "123"}},
		{`update City 1 name "San Jose"`, []string{"update", "City", "1", "name", `"San Jose"`}},
		{"update\tCity 1 name Reno", []string{"update", "City", "1", "name", "Reno"}},
		{`update City 1 name "open`, []string{"update", "City", "1", "name", `"open`}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.line))
		})
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "Fremont", unquote(`"Fremont"`))
	assert.Equal(t, "Fremont", unquote("Fremont"))
	assert.Equal(t, `"`, unquote(`"`))
	assert.Equal(t, "", unquote(`""`))
}
