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

package stringx

import "unsafe"

func ToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

func ToBytes(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}

// Truncate cuts str to at most maxRunes runes. If anything was cut, the last three of these are
// an ellipsis.
func Truncate(str string, maxRunes int) string {
	const ellipsis = "..."

	runes := []rune(str)
	if len(runes) <= maxRunes {
		return str
	}

	if maxRunes <= len(ellipsis) {
		return string(runes[:maxRunes])
	}

	return string(runes[:maxRunes-len(ellipsis)]) + ellipsis
}
