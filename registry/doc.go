// Copyright 2025 ADEGuard Authors
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

// Package registry tracks the lifecycle of inference capabilities.
//
// Each capability moves through unloaded -> loading -> ready | failed.
// A failed load never propagates beyond the capability itself: pipeline
// stages consult the registry and degrade (skip or fall back) when a
// capability is not ready. The registry is the only mutable capability
// state in the system and is safe for concurrent use.
package registry
