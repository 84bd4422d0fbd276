package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/testutil"
)

func TestNewIndex_SkipsBlankAndDuplicateCodes(t *testing.T) {
	ix := NewIndex([]model.TariffEntry{
		{Code: "4011.10.10", Description: "first", IndentLevel: 2},
		{Code: "", Description: "heading text without a code"},
		{Code: "4011.10.10", Description: "second", IndentLevel: 2},
		{Code: "40111010", Description: "same digits", IndentLevel: 2},
	})

	require.Equal(t, 1, ix.Len())
	e, ok := ix.Lookup("4011.10.10")
	require.True(t, ok)
	assert.Equal(t, "first", e.Description)
}

func TestIndex_LookupFormats(t *testing.T) {
	ix := NewIndex(testutil.Schedule())

	for _, code := range []string{"9017.90.0136", "9017.90.01.36", "9017900136", " 9017.90.0136 "} {
		e, ok := ix.Lookup(code)
		require.True(t, ok, code)
		assert.Equal(t, "9017.90.0136", e.Code)
	}

	_, ok := ix.Lookup("1234.56.78")
	assert.False(t, ok)
	_, ok = ix.Lookup("")
	assert.False(t, ok)
}

func TestIndex_WithPrefix(t *testing.T) {
	ix := NewIndex(testutil.Schedule())

	got := ix.WithPrefix("4011.20")
	codes := make([]string, 0, len(got))
	for _, e := range got {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"4011.20", "4011.20.10", "4011.20.10.15", "4011.20.10.25"}, codes)
	assert.Empty(t, ix.WithPrefix("12"))
}

func TestIndex_ChapterAndAncestors(t *testing.T) {
	ix := NewIndex(testutil.Schedule())

	chapter := ix.Chapter("94")
	require.Len(t, chapter, 4)
	assert.Equal(t, "9401", chapter[0].Code)

	ancestors := ix.Ancestors("4011.10.10.20")
	codes := make([]string, 0, len(ancestors))
	for _, e := range ancestors {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"4011.10.10", "4011.10", "4011"}, codes)
}

func TestIsDetail(t *testing.T) {
	assert.True(t, IsDetail(model.TariffEntry{Code: "4011.10.10", IndentLevel: 2}))
	assert.False(t, IsDetail(model.TariffEntry{Code: "4011.10.10", IndentLevel: 1}))
	assert.False(t, IsDetail(model.TariffEntry{Code: "4011.10", IndentLevel: 3}))
}

func TestIndex_Each(t *testing.T) {
	ix := NewIndex(testutil.Schedule())

	seen := 0
	ix.Each(func(model.TariffEntry) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}
