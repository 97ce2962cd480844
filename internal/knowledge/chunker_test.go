package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventorySource = `import os
from typing import List

LIMIT = 10

class Inventory:
    size = 3

    def add(self, item):
        self.items.append(item)

def load(path):
    data = open(path).read()
    return data

import os
TOTAL = LIMIT * 2
`

func TestChunker_Chunk(t *testing.T) {
	chunker := NewChunker(0, nil)
	chunks := chunker.Chunk(context.Background(), []byte(inventorySource))
	require.Len(t, chunks, 4)

	t.Run("class chunk", func(t *testing.T) {
		cls := chunks[0]
		assert.Equal(t, ChunkClass, cls.Type)
		assert.Equal(t, "Inventory", cls.Name)
		assert.Equal(t, 6, cls.LineStart)
		assert.Equal(t, 10, cls.LineEnd)
		assert.True(t, strings.HasPrefix(cls.Content, "class Inventory:"))
		assert.Contains(t, cls.Content, "self.items.append(item)")
	})

	t.Run("method chunk nested in class", func(t *testing.T) {
		m := chunks[1]
		assert.Equal(t, ChunkFunction, m.Type)
		assert.Equal(t, "add", m.Name)
		assert.Equal(t, "    def add(self, item):\n        self.items.append(item)", m.Content)
	})

	t.Run("function chunk", func(t *testing.T) {
		fn := chunks[2]
		assert.Equal(t, "load", fn.Name)
		assert.Equal(t, 12, fn.LineStart)
		assert.Equal(t, 14, fn.LineEnd)
	})

	t.Run("global chunk", func(t *testing.T) {
		global := chunks[3]
		assert.Equal(t, ChunkGlobal, global.Type)
		assert.Equal(t, "import os\nfrom typing import List\nLIMIT = 10\nTOTAL = LIMIT * 2", global.Content)
		assert.Equal(t, 1, global.LineStart)
		assert.Equal(t, 4, global.LineEnd)
		assert.NotContains(t, global.Content, "size = 3")
		assert.NotContains(t, global.Content, "data = open")
	})
}

func TestChunker_CoversEveryDefinition(t *testing.T) {
	src := "def outer():\n    def inner():\n        pass\n    return inner\n\nclass A:\n    class B:\n        pass\n"
	chunks := NewChunker(0, nil).Chunk(context.Background(), []byte(src))

	var names []string
	for _, ch := range chunks {
		names = append(names, ch.Name)
	}
	assert.Equal(t, []string{"outer", "inner", "A", "B"}, names)
}

func TestChunker_SyntaxErrorYieldsEmpty(t *testing.T) {
	chunks := NewChunker(0, nil).Chunk(context.Background(), []byte("def broken(:\n"))
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestChunker_MaxChunks(t *testing.T) {
	src := "def a():\n    pass\n\ndef b():\n    pass\n\ndef c():\n    pass\n"
	chunks := NewChunker(2, nil).Chunk(context.Background(), []byte(src))
	require.Len(t, chunks, 2)
	assert.Equal(t, "b", chunks[1].Name)
}

func TestChunker_TrailingCommentsExcluded(t *testing.T) {
	src := "def a():\n    b()\n    # trailing comment\n\nclass K:\n    def m(self):\n        pass\n    # end of class\n"
	chunks := NewChunker(0, nil).Chunk(context.Background(), []byte(src))
	require.Len(t, chunks, 3)

	assert.Equal(t, "a", chunks[0].Name)
	assert.Equal(t, 1, chunks[0].LineStart)
	assert.Equal(t, 2, chunks[0].LineEnd)
	assert.Equal(t, "def a():\n    b()", chunks[0].Content)

	assert.Equal(t, "K", chunks[1].Name)
	assert.Equal(t, 5, chunks[1].LineStart)
	assert.Equal(t, 7, chunks[1].LineEnd)
	assert.NotContains(t, chunks[1].Content, "end of class")
}
