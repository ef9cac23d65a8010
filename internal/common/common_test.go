package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPkgAlias(t *testing.T) {
	assert.Equal(t, "", PkgAlias(""))
	assert.Equal(t, "store", PkgAlias("typemapper/examples/store"))
	assert.Equal(t, "store", PkgAlias("store"))
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in      string
		pkgPath string
		name    string
	}{
		{"store.Order", "store", "Order"},
		{"example.com/app/store.Order", "example.com/app/store", "Order"},
		{"Order", "", "Order"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pkgPath, name := SplitQualified(tt.in)
			assert.Equal(t, tt.pkgPath, pkgPath)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestFirst(t *testing.T) {
	v, ok := First([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = First([]int(nil))
	assert.False(t, ok)
}
