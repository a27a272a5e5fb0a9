package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"notblank,max=3"`
	Email string `validate:"contactemail"`
}

func TestIsEmail(t *testing.T) {
	valid := []string{"ana@example.com", "a.b+tag@sub.domain.io", "x_y%z@host.co"}
	invalid := []string{"", "ana", "ana@", "@example.com", "ana@example", "ana@example.c", "ana @example.com", "ana@exa mple.com", "ana@example.c0m"}

	for _, email := range valid {
		assert.True(t, IsEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, IsEmail(email), email)
	}
}

func TestStructReportsFailedTags(t *testing.T) {
	err := Struct(sample{Name: "   ", Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, []string{"notblank", "contactemail"}, FailedTags(err))

	err = Struct(sample{Name: "abcd", Email: "a@b.io"})
	assert.Equal(t, []string{"max"}, FailedTags(err))

	assert.NoError(t, Struct(sample{Name: "abc", Email: "a@b.io"}))
}

func TestMaxCountsCharacters(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "ñáé", Email: "a@b.io"}))
}

func TestFailedTagsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FailedTags(errors.New("boom")))
}
