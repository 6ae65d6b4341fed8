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

package config

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

type cachePolicyValidator struct{}

func (cachePolicyValidator) Tag() string { return "cache_policy" }

func (cachePolicyValidator) Validate(fl validator.FieldLevel) bool {
	return mustBeKnownCachePolicy(fl.Field().String())
}

func (cachePolicyValidator) AlwaysValidate() bool { return false }

func (cachePolicyValidator) MessageTemplate() string {
	return "{0} must be one of STATIC, MODERATE, DYNAMIC, PRIVATE or NO_CACHE"
}

func (cachePolicyValidator) Translate(ut ut.Translator, fe validator.FieldError) string {
	t, err := ut.T("cache_policy", fe.Field())
	if err != nil {
		return fe.Error()
	}

	return t
}
