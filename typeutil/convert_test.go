package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestConvert(t *testing.T) {
	t.Run("same type", func(t *testing.T) {
		in := user{Name: "Ada", Age: 36}
		out, err := Convert[user](in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("map to struct", func(t *testing.T) {
		out, err := Convert[user](map[string]any{"name": "Ada", "age": 36})
		require.NoError(t, err)
		assert.Equal(t, user{Name: "Ada", Age: 36}, out)
	})

	t.Run("incompatible", func(t *testing.T) {
		_, err := Convert[int]("not a number")
		assert.Error(t, err)
	})

	t.Run("unencodable", func(t *testing.T) {
		_, err := Convert[user](make(chan int))
		assert.Error(t, err)
	})
}

func TestMustConvert(t *testing.T) {
	assert.Equal(t, 3, MustConvert[int](3))
	assert.Panics(t, func() { MustConvert[int]("x") })
}
