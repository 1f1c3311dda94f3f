package toylang

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	_ = v
}

func TestProgramDumpYAML(t *testing.T) {
	e := New()
	prog, diags := e.Compile(`
struct Point { x: i64, y: i64 }
impl Point {
    fn sum(&self) -> i64 { self.x + self.y }
}
fn main() -> i64 {
    val p = Point { x: 1, y: 2 };
    p.sum()
}
`)
	require.Empty(t, diags)

	out, err := prog.DumpYAML()
	require.NoError(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestProgramDumpJSON(t *testing.T) {
	e := New()
	prog, diags := e.Compile(`
struct Point { x: i64, y: i64 }
impl Point {
    fn sum(&self) -> i64 { self.x + self.y }
}
fn main() -> i64 {
    val p = Point { x: 1, y: 2 };
    p.sum()
}
`)
	require.Empty(t, diags)

	out, err := prog.DumpJSON()
	require.NoError(t, err)
	snaps.MatchSnapshot(t, out)

	assert.Equal(t, "main", gjson.Get(out, "functions.0.name").String())
	assert.Equal(t, "i64", gjson.Get(out, "functions.0.returns").String())
	assert.Equal(t, "Point", gjson.Get(out, "structs.0.name").String())
}

func TestProgramDumpControlFlow(t *testing.T) {
	e := New()
	prog, diags := e.Compile(`
fn main() -> u64 {
    var total: u64 = 0;
    for i in 0u64 to 10u64 {
        if i == 5u64 {
            break;
        } elif i == 2u64 {
            continue;
        } else {
            total = total + i;
        }
    }
    total
}
`)
	require.Empty(t, diags)

	out, err := prog.DumpYAML()
	require.NoError(t, err)
	snaps.MatchSnapshot(t, out)
}
