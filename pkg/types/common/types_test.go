package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

func TestPageRequest_Normalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   common.PageRequest
		want common.PageRequest
	}{
		{"zero value gets defaults", common.PageRequest{}, common.PageRequest{Page: 0, PageSize: common.DefaultPageSize}},
		{"negative page clamped", common.PageRequest{Page: -3, PageSize: 10}, common.PageRequest{Page: 0, PageSize: 10}},
		{"oversized page size capped", common.PageRequest{Page: 2, PageSize: 5000}, common.PageRequest{Page: 2, PageSize: common.MaxPageSize}},
		{"valid request untouched", common.PageRequest{Page: 4, PageSize: 25}, common.PageRequest{Page: 4, PageSize: 25}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, common.PageRequest{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 60, common.PageRequest{Page: 3, PageSize: 20}.Offset())
}

func TestPage_TotalPages(t *testing.T) {
	t.Parallel()

	p := common.Page[int]{PageSize: 20, TotalItems: 41}
	assert.Equal(t, int64(3), p.TotalPages())

	empty := common.Page[int]{PageSize: 20, TotalItems: 0}
	assert.Equal(t, int64(0), empty.TotalPages())

	zero := common.Page[int]{}
	assert.Equal(t, int64(0), zero.TotalPages())
}
