package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NewQuery_Parses_Flags_And_Terms(t *testing.T) {
	req := require.New(t)
	query := NewQuery(`/find "invoice" late --from alice --with bob --limit 5`)

	req.Equal("invoice late", query.Terms)
	req.Equal("alice", query.From)
	req.Equal("bob", query.With)
	req.Equal(5, query.Limit)
}

func Test_NewQuery_Defaults(t *testing.T) {
	req := require.New(t)
	query := NewQuery("hello world")

	req.Equal("hello world", query.Terms)
	req.Empty(query.From)
	req.Empty(query.With)
	req.Equal(10, query.Limit)
}

func Test_NewQuery_Ignores_Bad_Limit(t *testing.T) {
	req := require.New(t)
	req.Equal(10, NewQuery("hello --limit zero").Limit)
	req.Equal(10, NewQuery("hello --limit -3").Limit)
}

func Test_NewQuery_Command_Prefix_Is_Not_A_Term(t *testing.T) {
	req := require.New(t)
	query := NewQuery("/find hello")
	req.Equal("hello", query.Terms)
}
