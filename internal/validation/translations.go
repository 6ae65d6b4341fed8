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

package validation

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

func registerTranslations(validate *validator.Validate, trans ut.Translator) error {
	translations := []struct {
		tag      string
		template string
	}{
		{tag: "required_without", template: "{0} is a required field as long as {1} is not set"},
		{tag: "required_with", template: "{0} is a required field if {1} is set"},
		{tag: "excluded_with", template: "{0} must not be set if {1} is set"},
	}

	for _, entry := range translations {
		if err := validate.RegisterTranslation(entry.tag, trans,
			registrationFunc(entry.tag, entry.template), translateFunc); err != nil {
			return err
		}
	}

	return nil
}

func registrationFunc(tag string, translation string) validator.RegisterTranslationsFunc {
	return func(ut ut.Translator) error {
		return ut.Add(tag, translation, true)
	}
}

func translateFunc(ut ut.Translator, fe validator.FieldError) string {
	t, err := ut.T(fe.Tag(), fe.Field(), strings.ToLower(fe.Param()))
	if err != nil {
		return fe.Error()
	}

	return t
}
