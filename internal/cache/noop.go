// Copyright 2025 The adminbff Authors
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

package cache

import (
	"context"
	"time"
)

// Noop is a cache, which never holds anything.
type Noop struct{}

func (Noop) Start(_ context.Context) error { return nil }
func (Noop) Stop(_ context.Context) error  { return nil }

func (Noop) Get(_ context.Context, _ string) ([]byte, error) { return nil, ErrNoCacheEntry }

func (Noop) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
