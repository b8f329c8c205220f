// Copyright 2026 The Accumulo Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package locator

import "github.com/tchaie/accumulo/pkg/data"

type serverSession struct {
	server  string
	session string
}

// lockSession memoizes lock-checker verdicts for the duration of one
// operation. The checker is shared across many threads; binning a large
// input must not query it once per mutation.
type lockSession struct {
	checker  LockChecker
	verdicts map[serverSession]bool
}

func newLockSession(checker LockChecker) *lockSession {
	return &lockSession{
		checker:  checker,
		verdicts: make(map[serverSession]bool),
	}
}

// check returns loc when its server still holds the session's lock, nil
// otherwise. A nil loc passes through.
func (s *lockSession) check(loc *data.TabletLocation) *data.TabletLocation {
	if loc == nil {
		return nil
	}
	key := serverSession{server: loc.Server, session: loc.Session}
	held, ok := s.verdicts[key]
	if !ok {
		held = s.checker.IsLockHeld(loc.Server, loc.Session)
		s.verdicts[key] = held
	}
	if !held {
		return nil
	}
	return loc
}
