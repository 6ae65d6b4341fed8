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

package serve

import (
	"bytes"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxevent"
)

func TestEventLoggerLogEvent(t *testing.T) {
	t.Parallel()

	errTest := errors.New("boom")

	for uc, tc := range map[string]struct {
		evt      fxevent.Event
		expected string
	}{
		"lifecycle hook started": {
			evt:      &fxevent.OnStartExecuting{FunctionName: "api.Start", CallerName: "fxlcm"},
			expected: `{"level":"trace","_functionName":"api.Start","_caller":"fxlcm","message":"OnStart hook executing"}`,
		},
		"lifecycle hook failed to start": {
			evt: &fxevent.OnStartExecuted{FunctionName: "api.Start", CallerName: "fxlcm", Err: errTest},
			expected: `{"level":"error","_functionName":"api.Start","_caller":"fxlcm","error":"boom",
				"message":"OnStart hook failed"}`,
		},
		"lifecycle hook stopped": {
			evt: &fxevent.OnStopExecuted{FunctionName: "api.Stop", CallerName: "fxlcm", Runtime: 2 * time.Second},
			expected: `{"level":"trace","_functionName":"api.Stop","_caller":"fxlcm","_runtime":"2s",
				"message":"OnStop hook executed"}`,
		},
		"configuration supplied": {
			evt: &fxevent.Supplied{TypeName: "*config.Configuration", ModuleName: "main"},
			expected: `{"level":"trace","_type":"*config.Configuration","_module":"main","_moduleTrace":[],
				"message":"Module supplied"}`,
		},
		"constructor failed": {
			evt: &fxevent.Provided{ModuleName: "cache", StackTrace: []string{"newCache"}, Err: errTest},
			expected: `{"level":"error","_module":"cache","_moduleTrace":[],"_stacktrace":["newCache"],
				"error":"boom","message":"Error encountered while providing module"}`,
		},
		"constructor provided": {
			evt: &fxevent.Provided{
				ConstructorName: "newCache",
				ModuleName:      "cache",
				OutputTypeNames: []string{"cache.Cache", "io.Closer"},
			},
			expected: `{"level":"trace","_constructor":"newCache","_module":"cache","_moduleTrace":[],
				"_stacktrace":[],"_type":"cache.Cache,io.Closer","_private":false,"message":"Module provided"}`,
		},
		"invoke failed": {
			evt: &fxevent.Invoked{FunctionName: "newLifecycleManager", ModuleName: "api", Err: errTest},
			expected: `{"level":"error","_stack":"","_function":"newLifecycleManager","_module":"api",
				"error":"boom","message":"Invoke failed"}`,
		},
		"signal received": {
			evt:      &fxevent.Stopping{Signal: syscall.SIGTERM},
			expected: `{"level":"trace","_signal":"TERMINATED","message":"Received signal"}`,
		},
		"start failed": {
			evt:      &fxevent.RollingBack{StartErr: errTest},
			expected: `{"level":"error","error":"boom","message":"Start failed, rolling back"}`,
		},
		"rollback succeeded": {
			evt:      &fxevent.RolledBack{},
			expected: `{"level":"trace","message":"Rollback succeeded"}`,
		},
		"application started": {
			evt:      &fxevent.Started{},
			expected: `{"level":"trace","message":"Started"}`,
		},
		"application failed to stop": {
			evt:      &fxevent.Stopped{Err: errTest},
			expected: `{"level":"error","error":"boom","message":"Stop failed"}`,
		},
		"custom logger initialized": {
			evt:      &fxevent.LoggerInitialized{ConstructorName: "eventLogger"},
			expected: `{"level":"trace","_function":"eventLogger","message":"Initialized custom fxevent.Logger"}`,
		},
	} {
		t.Run(uc, func(t *testing.T) {
			t.Parallel()

			// GIVEN
			buf := bytes.NewBuffer(nil)
			logger := &eventLogger{l: zerolog.New(buf).Level(zerolog.TraceLevel)}

			// WHEN
			logger.LogEvent(tc.evt)

			// THEN
			assert.JSONEq(t, tc.expected, buf.String())
		})
	}
}
