// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package utils

import (
	"log/slog"
	"sync"
)

// FireAndForgetSynchronizer detaches background work from the calling
// request. In production this is a plain "go func()" with panic recovery.
// During testing SyncFireAndForgetSynchronizer runs the function inline,
// which makes pipeline tests deterministic.
type FireAndForgetSynchronizer interface {
	FireAndForget(fn func())
}

type fireAndForgetSynchronizer struct{}

func NewFireAndForgetSynchronizer() FireAndForgetSynchronizer {
	return fireAndForgetSynchronizer{}
}

func (fireAndForgetSynchronizer) FireAndForget(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in fire and forget task", "panic", r)
			}
		}()
		fn()
	}()
}

// SyncFireAndForgetSynchronizer executes the function synchronously and
// tracks it in a wait group, so tests can await completion explicitly.
type SyncFireAndForgetSynchronizer struct {
	wg sync.WaitGroup
}

func (s *SyncFireAndForgetSynchronizer) FireAndForget(fn func()) {
	s.wg.Add(1)
	defer s.wg.Done()
	fn()
}

func (s *SyncFireAndForgetSynchronizer) Wait() {
	s.wg.Wait()
}
