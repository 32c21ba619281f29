package simulation

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/compiler"
	"github.com/Keyhole-Koro/snackPersona/internal/testutil"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func makeAgent(name string) *Agent {
	g := types.NewGenotype(name)
	g.Attributes[types.AttrOccupation] = types.StringAttr("barista")
	return NewAgent(g, compiler.Compile(g))
}

func TestRunEpisodePostsThenEngages(t *testing.T) {
	stub := testutil.NewStubBackend()
	runner := NewRunner(stub, 4)

	agents := []*Agent{makeAgent("Alpha"), makeAgent("Beta"), makeAgent("Gamma")}
	rng := rand.New(rand.NewSource(1))

	transcript, err := runner.RunEpisode(context.Background(), agents, "coffee", 2, rng)
	require.NoError(t, err)

	var posts int
	for _, ev := range transcript[:3] {
		require.Equal(t, types.EventPost, ev.Type)
		posts++
	}
	require.Equal(t, 3, posts)

	for _, ev := range transcript[3:] {
		require.Contains(t, []types.EventType{types.EventReply, types.EventPass}, ev.Type)
	}
}

func TestRunEpisodeDeclinesWhenBackendSaysNo(t *testing.T) {
	stub := testutil.NewStubBackend()
	stub.EngageAnswer = "no"
	runner := NewRunner(stub, 4)

	agents := []*Agent{makeAgent("Alpha"), makeAgent("Beta")}
	rng := rand.New(rand.NewSource(2))

	transcript, err := runner.RunEpisode(context.Background(), agents, "coffee", 1, rng)
	require.NoError(t, err)

	for _, ev := range transcript[2:] {
		require.Equal(t, types.EventPass, ev.Type)
	}
}

func TestRunEpisodeUsesPlaceholderOnBackendFailure(t *testing.T) {
	stub := testutil.NewStubBackend()
	stub.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", nil
	}
	runner := NewRunner(stub, 4)

	agents := []*Agent{makeAgent("Alpha")}
	rng := rand.New(rand.NewSource(3))

	transcript, err := runner.RunEpisode(context.Background(), agents, "coffee", 0, rng)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, "[Alpha is thinking…]", transcript[0].Content)
}

func TestRunEpisodeSingleAgentNeverEngagesItself(t *testing.T) {
	stub := testutil.NewStubBackend()
	runner := NewRunner(stub, 4)

	agents := []*Agent{makeAgent("Solo")}
	rng := rand.New(rand.NewSource(4))

	transcript, err := runner.RunEpisode(context.Background(), agents, "coffee", 3, rng)
	require.NoError(t, err)
	require.Len(t, transcript, 1) // only the post; no eligible feed entries ever exist
}
