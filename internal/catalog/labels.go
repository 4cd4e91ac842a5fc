// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"strings"
	"unicode"
)

// LabelFromName turns an API field name into a human label.
// Acronym runs stay together: "DBInstanceIdentifier" -> "DB Instance Identifier",
// "ResourceARN" -> "Resource ARN", "OKActions" -> "OK Actions".
func LabelFromName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && startsWord(runes, i) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func startsWord(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsUpper(cur) && unicode.IsLower(prev):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev):
		// End of an acronym: "DBInstance" breaks before the "I".
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	case unicode.IsLetter(cur) && unicode.IsDigit(prev):
		return unicode.IsUpper(cur)
	default:
		return false
	}
}
