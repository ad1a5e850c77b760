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

// Package mock provides a sessionctx.Context implementation for tests.
package mock

import "github.com/td-commit-queue/presto/sessionctx"

// Context represents a mocked sessionctx.Context.
type Context struct {
	sessionVars *sessionctx.SessionVars
}

// GetSessionVars implements sessionctx.Context.
func (c *Context) GetSessionVars() *sessionctx.SessionVars {
	return c.sessionVars
}

// NewContext creates a new mocked sessionctx.Context.
func NewContext() *Context {
	return &Context{sessionVars: sessionctx.NewSessionVars()}
}
