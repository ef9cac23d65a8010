package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankNames(t *testing.T) {
	names := []string{"FullName", "Name", "Email", "CreatedAt"}

	ranked := RankNames("name", names)
	assert.Len(t, ranked, 4)
	assert.Equal(t, "Name", ranked[0].Name)
	assert.InDelta(t, 1.0, ranked[0].Score, 0.0001)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"FullName", "Name", "Email", "CreatedAt"}

	assert.Equal(t, []string{"FullName"}, Suggest("FulName", names, 1))
	assert.Empty(t, Suggest("Zzzzzzzz", names, 3))
	assert.Nil(t, Suggest("x", nil, 3))
}

func TestCandidateListTop(t *testing.T) {
	c := CandidateList{{Name: "a", Score: 0.9}, {Name: "b", Score: 0.4}}
	assert.Len(t, c.Top(5), 2)
	assert.Len(t, c.Top(1), 1)
	assert.Len(t, c.AboveThreshold(0.5), 1)
}
