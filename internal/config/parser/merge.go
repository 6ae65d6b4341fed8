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

package parser

import (
	"reflect"
)

// merge merges src into dest. Maps are merged recursively, everything else is overridden.
func merge(dest, src any) any {
	if dest == nil {
		return src
	}

	vDst := reflect.ValueOf(dest)
	vSrc := reflect.ValueOf(src)

	if vDst.Kind() == reflect.Map && vSrc.Kind() == reflect.Map {
		dstMap, dstOK := dest.(map[string]any)
		srcMap, srcOK := src.(map[string]any)

		if dstOK && srcOK {
			return mergeMaps(dstMap, srcMap)
		}
	}

	return src
}

func mergeMaps(dest, src map[string]any) map[string]any {
	for k, v := range src {
		dest[k] = merge(dest[k], v)
	}

	return dest
}
