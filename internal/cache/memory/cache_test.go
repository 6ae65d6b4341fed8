// Copyright 2025 Dimitrij Drus <dadrus@gmx.de>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cache"
	"github.com/storeforge/adminbff/internal/validation"
)

func TestNewCache(t *testing.T) {
	t.Parallel()

	validator, err := validation.NewValidator()
	require.NoError(t, err)

	for _, tc := range []struct {
		uc     string
		conf   map[string]any
		assert func(t *testing.T, err error, cch cache.Cache)
	}{
		{
			uc: "without config",
			assert: func(t *testing.T, err error, cch cache.Cache) {
				t.Helper()

				require.NoError(t, err)
				require.NotNil(t, cch)
			},
		},
		{
			uc:   "with limits",
			conf: map[string]any{"max_entries": 10, "max_memory": "1MB"},
			assert: func(t *testing.T, err error, cch cache.Cache) {
				t.Helper()

				require.NoError(t, err)
				require.NotNil(t, cch)
			},
		},
		{
			uc:   "with unsupported properties",
			conf: map[string]any{"foo": "bar"},
			assert: func(t *testing.T, err error, _ cache.Cache) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrConfiguration)
				require.ErrorContains(t, err, "failed decoding in-memory cache config")
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// WHEN
			cch, err := NewCache(tc.conf, validator)

			// THEN
			tc.assert(t, err, cch)
		})
	}
}

func TestCacheUsage(t *testing.T) {
	t.Parallel()

	cch, err := NewCache(nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, cch.Start(ctx))

	defer cch.Stop(ctx)

	for _, tc := range []struct {
		uc             string
		key            string
		configureCache func(t *testing.T, cch cache.Cache)
		assert         func(t *testing.T, data []byte, err error)
	}{
		{
			uc:  "can retrieve not expired value",
			key: "foo",
			configureCache: func(t *testing.T, cch cache.Cache) {
				t.Helper()

				require.NoError(t, cch.Set(ctx, "foo", []byte("bar"), 10*time.Minute))
			},
			assert: func(t *testing.T, data []byte, err error) {
				t.Helper()

				require.NoError(t, err)
				assert.Equal(t, []byte("bar"), data)
			},
		},
		{
			uc:  "cannot retrieve expired value",
			key: "bar",
			configureCache: func(t *testing.T, cch cache.Cache) {
				t.Helper()

				require.NoError(t, cch.Set(ctx, "bar", []byte("baz"), 1*time.Millisecond))
				time.Sleep(20 * time.Millisecond)
			},
			assert: func(t *testing.T, _ []byte, err error) {
				t.Helper()

				require.ErrorIs(t, err, cache.ErrNoCacheEntry)
			},
		},
		{
			uc:             "cannot retrieve not existing value",
			key:            "baz",
			configureCache: func(t *testing.T, _ cache.Cache) { t.Helper() },
			assert: func(t *testing.T, _ []byte, err error) {
				t.Helper()

				require.ErrorIs(t, err, cache.ErrNoCacheEntry)
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// GIVEN
			tc.configureCache(t, cch)

			// WHEN
			data, err := cch.Get(ctx, tc.key)

			// THEN
			tc.assert(t, data, err)
		})
	}
}

func TestCacheEvictionByMemoryCost(t *testing.T) {
	t.Parallel()

	// GIVEN
	validator, err := validation.NewValidator()
	require.NoError(t, err)

	cch, err := NewCache(map[string]any{"max_memory": "1KB"}, validator)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, cch.Start(ctx))

	defer cch.Stop(ctx)

	value := make([]byte, 600)

	// WHEN
	require.NoError(t, cch.Set(ctx, "first", value, 10*time.Minute))
	require.NoError(t, cch.Set(ctx, "second", value, 10*time.Minute))

	// THEN
	_, err = cch.Get(ctx, "first")
	require.ErrorIs(t, err, cache.ErrNoCacheEntry)

	data, err := cch.Get(ctx, "second")
	require.NoError(t, err)
	assert.Len(t, data, 600)
}
