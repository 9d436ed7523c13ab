// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bencode

import (
	"fmt"

	"github.com/p2p-ld/torrent-models/pkg/bencode/scanner"
)

// Reason re-exports the scanner's syntax error classification so callers
// never need to import the scanner package directly.
type Reason = scanner.Reason

const (
	ReasonMalformed        = scanner.ReasonMalformed
	ReasonUnterminated     = scanner.ReasonUnterminated
	ReasonNonAscending     = scanner.ReasonNonAscending
	ReasonDuplicateKey     = scanner.ReasonDuplicateKey
	ReasonNonStringKey     = scanner.ReasonNonStringKey
	ReasonLengthOverflow   = scanner.ReasonLengthOverflow
	ReasonNonNumericLength = scanner.ReasonNonNumericLength
	ReasonLeadingZero      = scanner.ReasonLeadingZero
	ReasonPrematureEOF     = scanner.ReasonPrematureEOF
	ReasonTrailingData     = scanner.ReasonTrailingData
)

// SyntaxError is the library-facing form of error kind 1 from spec §7:
// malformed bencode at a specific byte offset, classified by Reason.
type SyntaxError struct {
	Reason Reason
	Offset int
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: syntax error at offset %d: %s", e.Offset, e.msg)
}

// wrapSyntaxError converts a *scanner.SyntaxError into the public
// *SyntaxError type. Any other error passes through unchanged.
func wrapSyntaxError(err error) error {
	se, ok := err.(*scanner.SyntaxError)
	if !ok {
		return err
	}
	return &SyntaxError{Reason: se.Reason, Offset: se.Offset, msg: se.Msg()}
}
