package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsFor(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{19, 1},
		{20, 2},
		{23, 2},
		{205, 20},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, PointsFor(c.count), "PointsFor(%d)", c.count)
	}
}
