// Copyright 2025 The Presto-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package sessionctx

import "github.com/td-commit-queue/presto/config"

// Context is the planner's view of a session.
type Context interface {
	// GetSessionVars returns the session variables.
	GetSessionVars() *SessionVars
}

// SessionVars carries the per-session switches the planner consults.
type SessionVars struct {
	// EnableJoinReorder controls whether join reordering passes execute.
	// When false they return their input plan unchanged.
	EnableJoinReorder bool
}

// NewSessionVars creates session variables seeded from the global config.
func NewSessionVars() *SessionVars {
	return &SessionVars{
		EnableJoinReorder: config.GetGlobalConfig().Performance.JoinReorderEnabled,
	}
}
