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

package fxlcm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/x/testsupport"
)

type serverMock struct {
	mock.Mock
}

func (m *serverMock) Serve(l net.Listener) error {
	args := m.Called(l)

	return args.Error(0)
}

func (m *serverMock) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func TestLifecycleManagerStart(t *testing.T) {
	for _, tc := range []struct {
		uc     string
		setup  func(t *testing.T, srv *serverMock)
		assert func(t *testing.T, exit *testsupport.PatchedOSExit, logs string)
	}{
		{
			uc: "successful start",
			setup: func(t *testing.T, srv *serverMock) {
				t.Helper()

				srv.On("Serve", mock.Anything).Return(nil)
			},
			assert: func(t *testing.T, exit *testsupport.PatchedOSExit, logs string) {
				t.Helper()

				require.False(t, exit.Called)
				assert.Contains(t, logs, "Starting listening")
				assert.NotContains(t, logs, "error")
			},
		},
		{
			uc: "failed to serve",
			setup: func(t *testing.T, srv *serverMock) {
				t.Helper()

				srv.On("Serve", mock.Anything).Return(errors.New("test error"))
			},
			assert: func(t *testing.T, exit *testsupport.PatchedOSExit, logs string) {
				t.Helper()

				require.True(t, exit.Called)
				assert.Contains(t, logs, "Starting listening")
				assert.Contains(t, logs, "test error")
			},
		},
		{
			uc: "served and closed",
			setup: func(t *testing.T, srv *serverMock) {
				t.Helper()

				srv.On("Serve", mock.Anything).Return(http.ErrServerClosed)
			},
			assert: func(t *testing.T, exit *testsupport.PatchedOSExit, logs string) {
				t.Helper()

				require.False(t, exit.Called)
				assert.Contains(t, logs, "Service stopped")
				assert.NotContains(t, logs, "error")
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// GIVEN
			exit, err := testsupport.PatchOSExit(t, func(int) {})
			require.NoError(t, err)

			port, err := testsupport.GetFreePort()
			require.NoError(t, err)

			srv := &serverMock{}
			tc.setup(t, srv)

			tb := &testsupport.TestingLog{TB: t}
			logger := zerolog.New(zerolog.TestWriter{T: tb})

			lcm := &LifecycleManager{
				ServiceName:    "api",
				ServiceAddress: fmt.Sprintf("127.0.0.1:%d", port),
				Server:         srv,
				Logger:         logger,
			}

			// WHEN
			err = lcm.Start(context.TODO())
			time.Sleep(50 * time.Millisecond)

			// THEN
			require.NoError(t, err)
			srv.AssertExpectations(t)
			tc.assert(t, exit, tb.CollectedLog())
		})
	}
}

func TestLifecycleManagerStartWithPortInUse(t *testing.T) {
	t.Parallel()

	// GIVEN
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer ln.Close()

	lcm := &LifecycleManager{
		ServiceName:    "api",
		ServiceAddress: ln.Addr().String(),
		Server:         &serverMock{},
		Logger:         zerolog.Nop(),
	}

	// WHEN
	err = lcm.Start(context.TODO())

	// THEN
	require.Error(t, err)
	require.ErrorIs(t, err, bff.ErrInternal)
	assert.Contains(t, err.Error(), "api service")
}

func TestLifecycleManagerStop(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc     string
		setup  func(t *testing.T, srv *serverMock)
		assert func(t *testing.T, err error, logs string)
	}{
		{
			uc: "stopped without error",
			setup: func(t *testing.T, srv *serverMock) {
				t.Helper()

				srv.On("Shutdown", mock.Anything).Return(nil)
			},
			assert: func(t *testing.T, err error, logs string) {
				t.Helper()

				require.NoError(t, err)
				assert.Contains(t, logs, "Tearing down service")
				assert.NotContains(t, logs, "error")
			},
		},
		{
			uc: "stopped with error",
			setup: func(t *testing.T, srv *serverMock) {
				t.Helper()

				srv.On("Shutdown", mock.Anything).Return(errors.New("test error"))
			},
			assert: func(t *testing.T, err error, logs string) {
				t.Helper()

				require.Error(t, err)
				assert.Contains(t, logs, "Tearing down service")
				assert.Contains(t, logs, "test error")
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			t.Parallel()

			// GIVEN
			srv := &serverMock{}
			tc.setup(t, srv)

			tb := &testsupport.TestingLog{TB: t}
			logger := zerolog.New(zerolog.TestWriter{T: tb})

			lcm := &LifecycleManager{
				ServiceName: "api",
				Server:      srv,
				Logger:      logger,
			}

			// WHEN
			err := lcm.Stop(context.TODO())

			// THEN
			tc.assert(t, err, tb.CollectedLog())
			srv.AssertExpectations(t)
		})
	}
}
