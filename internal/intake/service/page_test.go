package service

import (
	"errors"
	"testing"

	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/stretchr/testify/require"
)

func TestPageRequest(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want store.Page
	}{
		{PageRequest{}, store.Page{Limit: DefaultPageSize, Offset: 0}},
		{PageRequest{Page: 3, PageSize: 10}, store.Page{Limit: 10, Offset: 20}},
		{PageRequest{Page: -1, PageSize: 1000}, store.Page{Limit: MaxPageSize, Offset: 0}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.in.storePage())
	}

	p := newPage[int](nil, 41, PageRequest{Page: 2, PageSize: 20})
	require.Equal(t, Page[int]{Items: []int{}, TotalCount: 41, Page: 2, TotalPages: 3}, p)
}

func TestOrderByIDs(t *testing.T) {
	items := []string{"a", "b", "c"}
	got := orderByIDs(items, []string{"c", "x", "a"}, func(s string) string { return s })
	require.Equal(t, []string{"c", "a"}, got)
}

func TestValidationError(t *testing.T) {
	err := validateStruct(CreateChallengeInput{Name: "", Email: "nope"})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, map[string]string{
		"name":  "is required",
		"email": "must be a valid email address",
	}, ve.Fields)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, "invalid input: email: must be a valid email address; name: is required", err.Error())
}
