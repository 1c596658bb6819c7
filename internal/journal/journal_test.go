package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/engine"
	"github.com/talgya/eos/internal/world"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func smallGame(t *testing.T) *engine.Game {
	t.Helper()
	rules, err := config.DefaultRules()
	require.NoError(t, err)
	sys := world.NewSystem("sys", "Test")
	sys.AddBody("Alpha", world.HexCoord{}, 7)
	sys.AddBody("Beta", world.HexCoord{Q: 10}, 7)
	g := engine.New(rules, sys)
	g.AddPlayer("p1", "Ada")
	_, err = g.SpawnPlayerUnit("p1")
	require.NoError(t, err)
	return g
}

func TestCompressRoundTrip(t *testing.T) {
	src := []byte(strings.Repeat("eos turn report ", 200))
	packed, err := compress(src)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(src))

	out, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRecordRequiresSession(t *testing.T) {
	j := openTemp(t)
	err := j.RecordTurn(context.Background(), engine.TurnReport{Turn: 1}, nil)
	assert.Error(t, err)
}

func TestRecordAndLoadTurns(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	g := smallGame(t)

	s, err := j.StartSession(ctx, "sys", "Test", 42)
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)

	g.OnTurn(j.Observer(g))
	first := g.AdvanceTime()
	second := g.AdvanceTime()

	turns, err := j.Turns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, uint64(2), turns[0].Turn)
	assert.Equal(t, second.Digest, turns[0].Digest)
	assert.Equal(t, s.ID, turns[1].Session)
	assert.Positive(t, turns[1].StoredSize)

	report, err := j.Report(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, report.Digest)
	require.Len(t, report.Units, 1)
	assert.Equal(t, agents.UnitPlayer, report.Units[0].Kind)
	assert.Equal(t, agents.PlayerID("p1"), report.Units[0].Owner)

	_, err = j.Report(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(42), sessions[0].Seed)
}

func TestEventsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	g := smallGame(t)
	_, err := j.StartSession(ctx, "sys", "Test", 1)
	require.NoError(t, err)

	all := g.Events(0)
	require.Len(t, all, 2, "join and spawn")

	require.NoError(t, j.RecordTurn(ctx, engine.TurnReport{Turn: 1}, all))
	require.NoError(t, j.RecordTurn(ctx, engine.TurnReport{Turn: 2}, all))
	assert.Equal(t, all[1].Seq, j.LastSeq())

	events, err := j.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, all[1].Description, events[0].Description)
	assert.Equal(t, all[0].Seq, events[1].Seq)
}

func TestDuplicateTurnRejected(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	_, err := j.StartSession(ctx, "sys", "Test", 1)
	require.NoError(t, err)

	require.NoError(t, j.RecordTurn(ctx, engine.TurnReport{Turn: 1}, nil))
	assert.Error(t, j.RecordTurn(ctx, engine.TurnReport{Turn: 1}, nil))

	turns, err := j.Turns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
