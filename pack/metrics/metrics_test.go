package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeVote struct{ vote bool }

func (f fakeVote) IsVote() bool { return f.vote }

type fakeCode struct{ code int8 }

func (f fakeCode) Int8() int8 { return f.code }

func TestAcceptIncrementsVoteOrNonVoteCounter(t *testing.T) {
	require := require.New(t)
	m := New()

	m.Accept(fakeVote{vote: false})
	m.Accept(fakeVote{vote: true})
	m.Accept(fakeVote{vote: true})

	require.Equal(int64(1), m.acceptNonVote.Count())
	require.Equal(int64(2), m.acceptVote.Count())
}

func TestRejectIncrementsMatchingCounter(t *testing.T) {
	require := require.New(t)
	m := New()

	m.Reject(fakeCode{code: -1})
	m.Reject(fakeCode{code: -1})
	m.Reject(fakeCode{code: -10})

	require.Equal(int64(2), m.reject[-1].Count())
	require.Equal(int64(1), m.reject[-10].Count())
	require.Equal(int64(0), m.reject[-2].Count())
}

func TestRejectUnknownCodeIsIgnored(t *testing.T) {
	require := require.New(t)
	m := New()
	require.NotPanics(func() {
		m.Reject(fakeCode{code: 0})
	})
}

func TestSetPoolDepthAndMicroblock(t *testing.T) {
	require := require.New(t)
	m := New()

	m.SetPoolDepth(42)
	require.Equal(int64(42), m.poolDepth.Value())

	m.Microblock(7)
	require.Equal(int64(1), m.microblockSize.Count())
}

func TestGathererIsNeverNil(t *testing.T) {
	require := require.New(t)
	m := NewNoop()
	require.NotNil(m.Gatherer())
}
