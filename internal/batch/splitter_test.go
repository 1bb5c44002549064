package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_MajorArcanaInTwoHalves(t *testing.T) {
	t.Parallel()

	names := domain.SectionMajor.ExpectedNames()
	requests, err := Split(names, DefaultMaxSize)
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Len(t, requests[0].Names, 11)
	assert.Len(t, requests[1].Names, 11)
	assert.Equal(t, names[:11], requests[0].Names)
	assert.Equal(t, names[11:], requests[1].Names)
	assert.Equal(t, 2, requests[0].Count)
	assert.Equal(t, 1, requests[1].Index)
}

func TestSplit_SuitsInOneRequest(t *testing.T) {
	t.Parallel()

	for _, section := range []domain.SectionName{domain.SectionWands, domain.SectionCups, domain.SectionSwords, domain.SectionPentacles} {
		requests, err := Split(section.ExpectedNames(), DefaultMaxSize)
		require.NoError(t, err)
		require.Len(t, requests, 1, "section %s", section)
		assert.Len(t, requests[0].Names, 14)
	}
}

func TestSplit_SizesSumAndBound(t *testing.T) {
	t.Parallel()

	names := make([]string, 23)
	for i := range names {
		names[i] = string(rune('a' + i))
	}

	for maxSize := 1; maxSize <= 25; maxSize++ {
		requests, err := Split(names, maxSize)
		require.NoError(t, err)

		var joined []string
		for _, req := range requests {
			assert.LessOrEqual(t, len(req.Names), maxSize)
			joined = append(joined, req.Names...)
		}
		assert.Equal(t, names, joined, "max size %d", maxSize)
	}
}

func TestSplit_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Split([]string{"a"}, 0)
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	requests, err := Split(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestRun_ConcatenatesInRequestOrder(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(time.Unix(0, 0))
	runner := NewRunner(fake, 3*time.Second)
	requests, err := Split(domain.SectionMajor.ExpectedNames(), DefaultMaxSize)
	require.NoError(t, err)

	var issued []int
	got, err := Run(context.Background(), runner, requests, func(_ context.Context, req Request) ([]string, error) {
		issued = append(issued, req.Index)
		return req.Names, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, issued)
	assert.Equal(t, domain.SectionMajor.ExpectedNames(), got, "first-half names precede second-half names")
	assert.Equal(t, []time.Duration{3 * time.Second}, fake.Sleeps())
}

func TestRun_DoesNotDeduplicate(t *testing.T) {
	t.Parallel()

	runner := NewRunner(clock.NewFake(time.Unix(0, 0)), 0)
	requests := []Request{{Index: 0, Count: 2}, {Index: 1, Count: 2}}

	got, err := Run(context.Background(), runner, requests, func(_ context.Context, req Request) ([]string, error) {
		return []string{"same"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "same"}, got)
}

func TestRun_AnyFailureFailsWhole(t *testing.T) {
	t.Parallel()

	runner := NewRunner(clock.NewFake(time.Unix(0, 0)), time.Second)
	requests, err := Split(domain.SectionMajor.ExpectedNames(), DefaultMaxSize)
	require.NoError(t, err)

	boom := errors.New("boom")
	got, err := Run(context.Background(), runner, requests, func(_ context.Context, req Request) ([]string, error) {
		if req.Index == 1 {
			return nil, boom
		}
		return req.Names, nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sub-request 2 of 2")
	assert.Nil(t, got, "no partial metadata is returned")
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	runner := NewRunner(clock.NewFake(time.Unix(0, 0)), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	requests := []Request{{Index: 0, Count: 2}, {Index: 1, Count: 2}}

	got, err := Run(ctx, runner, requests, func(_ context.Context, req Request) ([]int, error) {
		cancel()
		return []int{req.Index}, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}
