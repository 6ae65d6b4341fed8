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
	"github.com/go-viper/mapstructure/v2"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/validation"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

// DecodeConfig decodes the type specific cache configuration into output and validates it.
func DecodeConfig(typ string, input any, output any, validator validation.Validator) error {
	dec, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				config.StringToByteSizeHookFunc(),
			),
			Result:      output,
			ErrorUnused: true,
		})
	if err != nil {
		return errorchain.NewWithMessagef(bff.ErrConfiguration,
			"failed decoding %s cache config", typ).CausedBy(err)
	}

	if err = dec.Decode(input); err != nil {
		return errorchain.NewWithMessagef(bff.ErrConfiguration,
			"failed decoding %s cache config", typ).CausedBy(err)
	}

	if validator == nil {
		return nil
	}

	if err = validator.ValidateStruct(output); err != nil {
		return errorchain.NewWithMessagef(bff.ErrConfiguration,
			"failed validating %s cache config", typ).CausedBy(err)
	}

	return nil
}
