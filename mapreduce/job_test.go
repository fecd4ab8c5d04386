package mapreduce

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type wordCountClient struct{}

func (wordCountClient) Map(_ int, line string, ctx *MapContext[string, int]) {
	for _, word := range strings.Fields(line) {
		ctx.Emit2(word, 1)
	}
}

func (wordCountClient) Reduce(word string, counts []int, ctx *ReduceContext[string, int]) {
	sum := 0
	for _, c := range counts {
		sum += c
	}
	ctx.Emit3(word, sum)
}

func TestWordCount(t *testing.T) {
	lines := []InputPair[int, string]{
		{Key: 0, Value: "the quick brown fox"},
		{Key: 1, Value: "the lazy dog"},
		{Key: 2, Value: "the fox jumps"},
	}

	job, err := StartJob[int, string, string, int, string, int](wordCountClient{}, lines, 3)
	require.NoError(t, err)

	require.NoError(t, job.Wait(context.Background()))

	got := map[string]int{}
	for _, p := range job.Output() {
		got[p.Key] = p.Value
	}

	require.Equal(t, 3, got["the"])
	require.Equal(t, 2, got["fox"])
	require.Equal(t, 1, got["dog"])

	state := job.State()
	require.Equal(t, ReduceStage, state.Stage)
	require.Equal(t, float32(100), state.Percentage)
}

func TestWaitIsIdempotent(t *testing.T) {
	lines := []InputPair[int, string]{{Key: 0, Value: "a b c"}}
	job, err := StartJob[int, string, string, int, string, int](wordCountClient{}, lines, 2)
	require.NoError(t, err)

	require.NoError(t, job.Wait(context.Background()))
	require.NoError(t, job.Wait(context.Background()))
	require.NoError(t, job.Close())

	var words []string
	for _, p := range job.Output() {
		words = append(words, p.Key)
	}
	sort.Strings(words)
	require.Equal(t, []string{"a", "b", "c"}, words)
}

func TestStartJobRejectsBadArgs(t *testing.T) {
	_, err := StartJob[int, string, string, int, string, int](nil, nil, 1)
	require.ErrorIs(t, err, ErrNilClient)

	_, err = StartJob[int, string, string, int, string, int](wordCountClient{}, nil, 0)
	require.ErrorIs(t, err, ErrNonPositiveWorkers)
}
