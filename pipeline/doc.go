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

// Package pipeline executes the multi-stage inference pipeline over
// safety reports.
//
// Entity extraction and severity classification run in sequence for every
// report; cluster assignment and explainability are optional and fan out
// in parallel. Each stage runs under its own deadline with panics contained
// at the stage boundary, so one stage's fault degrades only its own
// outcome. The batch scheduler spreads whole batches across a bounded
// worker pool with per-slot fault isolation.
package pipeline
