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

package apiclient

import (
	"context"
	"net/http"
	"slices"
)

type (
	RequestFunc  func(ctx context.Context, req *http.Request) error
	ResponseFunc func(ctx context.Context, req *http.Request, resp *http.Response)
	ErrorFunc    func(ctx context.Context, req *http.Request, err *Error)
)

// Stage is a named step applied to every attempt of a call. Each hook is optional.
type Stage struct {
	Name       string
	OnRequest  RequestFunc
	OnResponse ResponseFunc
	OnError    ErrorFunc
}

// Pipeline is an ordered list of stages. It is never modified after creation, so it can be
// shared by concurrent calls.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) Pipeline {
	return Pipeline{stages: slices.Clone(stages)}
}

// With returns a new pipeline with the given stages appended. A stage named like an existing
// one replaces it in place.
func (p Pipeline) With(stages ...Stage) Pipeline {
	result := slices.Clone(p.stages)

	for _, stage := range stages {
		idx := slices.IndexFunc(result, func(s Stage) bool { return s.Name == stage.Name })
		if idx >= 0 {
			result[idx] = stage
		} else {
			result = append(result, stage)
		}
	}

	return Pipeline{stages: result}
}

// Without returns a new pipeline without the stages with the given names.
func (p Pipeline) Without(names ...string) Pipeline {
	return Pipeline{stages: slices.DeleteFunc(slices.Clone(p.stages), func(s Stage) bool {
		return slices.Contains(names, s.Name)
	})}
}

func (p Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for idx, stage := range p.stages {
		names[idx] = stage.Name
	}

	return names
}

func (p Pipeline) onRequest(ctx context.Context, req *http.Request) error {
	for _, stage := range p.stages {
		if stage.OnRequest == nil {
			continue
		}

		if err := stage.OnRequest(ctx, req); err != nil {
			return err
		}
	}

	return nil
}

func (p Pipeline) onResponse(ctx context.Context, req *http.Request, resp *http.Response) {
	for _, stage := range p.stages {
		if stage.OnResponse != nil {
			stage.OnResponse(ctx, req, resp)
		}
	}
}

func (p Pipeline) onError(ctx context.Context, req *http.Request, err *Error) {
	for _, stage := range p.stages {
		if stage.OnError != nil {
			stage.OnError(ctx, req, err)
		}
	}
}
