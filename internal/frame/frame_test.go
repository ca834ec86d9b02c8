package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazus-cli/internal/model"
)

func tractFrame(t *testing.T, cols []string, rows ...[]any) *Frame {
	t.Helper()
	f := New(model.LevelTract, cols...)
	for _, r := range rows {
		require.NoError(t, f.Append(r...))
	}
	return f
}

func TestAppend_WrongWidth(t *testing.T) {
	f := New(model.LevelTract, "tract", "EconLoss")
	err := f.Append("06001400100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row has 1 values, want 2")
}

func TestOuterJoin_KeepsKeysFromEveryInput(t *testing.T) {
	loss := tractFrame(t, []string{"tract", "EconLoss"},
		[]any{"06001400100", 1000.0},
		[]any{"06001400200", 2000.0},
	)
	injuries := tractFrame(t, []string{"tract", "Injuries_Day"},
		[]any{"06001400200", 3.0},
		[]any{"06001400300", 1.0},
	)

	out, err := OuterJoin(model.LevelTract, loss, nil, injuries)
	require.NoError(t, err)

	assert.Equal(t, []string{"tract", "EconLoss", "Injuries_Day"}, out.Columns)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "06001400100", out.Key(0))
	assert.Nil(t, out.Value(0, "Injuries_Day"))
	assert.Equal(t, 3.0, out.Value(1, "Injuries_Day"))
	assert.Nil(t, out.Value(2, "EconLoss"))
}

func TestOuterJoin_FirstSourceOwnsDuplicateColumn(t *testing.T) {
	a := tractFrame(t, []string{"tract", "Population"}, []any{"1", 10})
	b := tractFrame(t, []string{"tract", "Population"}, []any{"1", 99})

	out, err := OuterJoin(model.LevelTract, a, b)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Value(0, "Population"))
}

func TestOuterJoin_LevelMismatch(t *testing.T) {
	a := tractFrame(t, []string{"tract", "EconLoss"})
	b := New(model.LevelBlock, "block", "EconLoss")

	_, err := OuterJoin(model.LevelTract, a, b)
	require.Error(t, err)
}

func TestDropNullAndEmptyColumns(t *testing.T) {
	f := tractFrame(t, []string{"tract", "EconLoss", "Debris", "Empty"},
		[]any{"1", 5.0, nil, nil},
		[]any{"2", nil, 7.0, nil},
		[]any{"3", math.NaN(), nil, nil},
	)

	out := f.DropNull("EconLoss").DropEmptyColumns()
	assert.Equal(t, 1, out.Len())
	assert.Equal(t, []string{"tract", "EconLoss"}, out.Columns)
}

func TestDropNull_MissingColumnDropsAll(t *testing.T) {
	f := tractFrame(t, []string{"tract"}, []any{"1"})
	assert.Equal(t, 0, f.DropNull("EconLoss").Len())
}

func TestConcat_UnionOfColumns(t *testing.T) {
	a := tractFrame(t, []string{"tract", "PARAMVALUE", "title"}, []any{"1", 90.0, "10-year"})
	b := tractFrame(t, []string{"tract", "PARAMVALUE", "extra"}, []any{"2", 110.0, "x"})

	out := Concat(a, nil, b)
	assert.Equal(t, model.LevelTract, out.Level)
	assert.Equal(t, []string{"tract", "PARAMVALUE", "title", "extra"}, out.Columns)
	assert.Equal(t, 2, out.Len())
	assert.Nil(t, out.Value(1, "title"))

	mixed := Concat(a, New(model.LevelNone, "PARAMVALUE"))
	assert.Equal(t, model.LevelNone, mixed.Level)
}

func TestAddColumnRenameSelect(t *testing.T) {
	f := tractFrame(t, []string{"tract", "EconLoss"}, []any{"1", 2.0})
	f.AddColumn("Double", func(i int) any {
		v, _ := f.Float(i, "EconLoss")
		return v * 2
	})
	assert.Equal(t, 4.0, f.Value(0, "Double"))

	require.NoError(t, f.Rename("Double", "Twice"))
	assert.True(t, f.Has("Twice"))
	assert.False(t, f.Has("Double"))
	require.NoError(t, f.Rename("missing", "Other"))

	s := f.Select("Twice", "missing", "tract")
	assert.Equal(t, []string{"Twice", "tract"}, s.Columns)
	assert.Equal(t, []any{4.0, "1"}, s.Rows[0])
}

func TestRename_RejectsExistingName(t *testing.T) {
	f := tractFrame(t, []string{"tract", "EconLoss", "Debris"}, []any{"1", 2.0, 3.0})

	err := f.Rename("Debris", "EconLoss")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, []string{"tract", "EconLoss", "Debris"}, f.Columns)
	assert.Equal(t, 3.0, f.Value(0, "Debris"))
}

func TestToFloatAndFormat(t *testing.T) {
	v, ok := ToFloat("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = ToFloat("abc")
	assert.False(t, ok)

	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "1500", Format(1500.0))
	assert.Equal(t, "06001", Format([]byte("06001")))
	assert.Equal(t, "7", Format(int64(7)))
}
